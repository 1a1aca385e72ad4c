package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/exp/shiny/driver"

	"github.com/example/notecanvas/internal/canvas"
	"github.com/example/notecanvas/internal/export"
	"github.com/example/notecanvas/internal/tool"
)

type openCmd struct {
	*root
	fs     *flag.FlagSet
	script string
	image  string
	doc    string
	format string
	margin int
}

func (o *openCmd) FlagSet() *flag.FlagSet {
	return o.fs
}

func parseOpenCmd(args []string, r *root) (*openCmd, error) {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	o := &openCmd{root: r.subcommand("open"), fs: fs}
	fs.Usage = usageFunc(o)
	fs.StringVar(&o.script, "script", "", "replay this script before showing the page")
	fs.StringVar(&o.doc, "doc", "", "load this saved document; Ctrl+D writes it back")
	fs.StringVar(&o.image, "image", "", "start with this image ready to place")
	fs.StringVar(&o.format, "format", "", "png or pdf for Ctrl+S (default from the config)")
	fs.IntVar(&o.margin, "margin", 24, "desk margin around the page in pixels")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: o}
	}
	if o.script != "" && o.doc != "" {
		return nil, errors.New("open: -script and -doc cannot be combined")
	}
	return o, nil
}

// saveTarget picks which destination a window save goes to. The canvas has a
// single save collaborator; the target rides on the save's context.
type saveTarget int

const (
	targetFile saveTarget = iota
	targetClipboard
	targetUpload
)

func (t saveTarget) String() string {
	switch t {
	case targetClipboard:
		return "copy"
	case targetUpload:
		return "upload"
	}
	return "save"
}

type targetKey struct{}

func withTarget(ctx context.Context, t saveTarget) context.Context {
	return context.WithValue(ctx, targetKey{}, t)
}

// router sends payloads to the file, clipboard or websocket saver named by
// the context.
func (o *openCmd) router() export.Saver {
	cfg := o.canvasConfig()
	files := export.FileSaver{Dir: cfg.SaveDir, Notifier: o.notifier}
	clip := export.ClipboardSaver{Notifier: o.notifier}
	return export.SaverFunc(func(ctx context.Context, p export.Payload) error {
		t, _ := ctx.Value(targetKey{}).(saveTarget)
		switch t {
		case targetClipboard:
			return clip.Save(ctx, p)
		case targetUpload:
			if cfg.UploadURL == "" {
				return errors.New("no upload_url configured")
			}
			return export.WebSocketSaver{URL: cfg.UploadURL, Notifier: o.notifier}.Save(ctx, p)
		}
		return files.Save(ctx, p)
	})
}

func (o *openCmd) newCanvas(w *window) (*canvas.Canvas, error) {
	cfg := o.canvasConfig()
	before := []canvas.Option{
		canvas.WithConfig(cfg),
		canvas.WithBackground(w.theme.Page),
	}
	after := []canvas.Option{
		canvas.WithOnSave(o.router()),
		canvas.WithOnBack(w.close),
		canvas.WithToolOptions(tool.WithTextRequestHandler(w.beginText)),
	}
	if o.script != "" {
		return playScriptOver(context.Background(), o.script, before, after)
	}
	c := canvas.New(append(before, after...)...)
	if o.doc == "" {
		return c, nil
	}
	f, err := os.Open(o.doc)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	defer f.Close()
	if err := c.ReadDocument(f); err != nil {
		return nil, fmt.Errorf("%s: %w", o.doc, err)
	}
	return c, nil
}

func (o *openCmd) Run() error {
	cfg := o.canvasConfig()
	f, err := formatFor(o.format, cfg)
	if err != nil {
		return err
	}
	w := newWindow(o.activeTheme, o.margin, f)
	w.docPath = o.doc
	if cfg.Image.MaxWidth > 0 && cfg.Image.MaxHeight > 0 {
		w.maxW, w.maxH = cfg.Image.MaxWidth, cfg.Image.MaxHeight
	}
	c, err := o.newCanvas(w)
	if err != nil {
		return err
	}
	w.attach(c)
	if o.image != "" {
		img, err := os.Open(o.image)
		if err != nil {
			return err
		}
		defer img.Close()
		w.loadImage(img)
	}
	driver.Main(w.main)
	return w.err
}

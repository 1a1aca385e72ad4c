package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/example/notecanvas/internal/canvas"
	"github.com/example/notecanvas/internal/export"
)

type uploadCmd struct {
	*root
	fs      *flag.FlagSet
	script  string
	url     string
	name    string
	format  string
	timeout time.Duration
}

func (u *uploadCmd) FlagSet() *flag.FlagSet {
	return u.fs
}

func parseUploadCmd(args []string, r *root) (*uploadCmd, error) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	u := &uploadCmd{root: r.subcommand("upload"), fs: fs}
	fs.Usage = usageFunc(u)
	url := ""
	if r.config != nil {
		url = r.config.UploadURL
	}
	fs.StringVar(&u.url, "url", url, "websocket endpoint (ws:// or wss://)")
	fs.StringVar(&u.name, "name", "", "name sent with the drawing (default a timestamped name)")
	fs.StringVar(&u.format, "format", "", "png or pdf (default from the config)")
	fs.DurationVar(&u.timeout, "timeout", export.DefaultUploadTimeout, "give up after this long")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: u}
	}
	if u.url == "" {
		return nil, fmt.Errorf("upload: -url or upload_url in the config is required")
	}
	u.script = fs.Arg(0)
	return u, nil
}

func (u *uploadCmd) Run() error {
	cfg := u.canvasConfig()
	f, err := formatFor(u.format, cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
	defer cancel()

	saver := named(u.name, export.WebSocketSaver{URL: u.url, Notifier: u.notifier})
	cv, err := playScript(ctx, u.script, cfg, canvas.WithOnSave(saver))
	if err != nil {
		return err
	}
	p, err := cv.Save(ctx, f)
	if err != nil {
		return err
	}
	fmt.Printf("uploaded %dx%d %s\n", p.Width, p.Height, p.Format)
	return nil
}

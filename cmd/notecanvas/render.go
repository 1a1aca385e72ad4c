package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/example/notecanvas/internal/canvas"
	"github.com/example/notecanvas/internal/export"
	"github.com/example/notecanvas/internal/render"
	"github.com/example/notecanvas/internal/theme"
)

type renderCmd struct {
	*root
	fs     *flag.FlagSet
	script string
	output string
	format string
	desk   bool
	margin int
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c := &renderCmd{root: r.subcommand("render"), fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "o", "", "output file (default a timestamped name in the save directory)")
	fs.StringVar(&c.format, "format", "", "png or pdf (default from -o, then the config)")
	fs.BoolVar(&c.desk, "desk", false, "draw the page on the theme's desk colour with a drop shadow")
	fs.IntVar(&c.margin, "margin", 32, "desk margin around the page in pixels")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.script = fs.Arg(0)
	return c, nil
}

func (c *renderCmd) Run() error {
	cfg := c.canvasConfig()
	formatFlag := c.format
	if formatFlag == "" && filepath.Ext(c.output) != "" {
		formatFlag = filepath.Ext(c.output)
	}
	f, err := formatFor(formatFlag, cfg)
	if err != nil {
		return err
	}

	dir, name := cfg.SaveDir, ""
	if c.output != "" {
		dir, name = filepath.Split(c.output)
	}
	saver := named(name, export.FileSaver{Dir: dir, Notifier: c.notifier})

	ctx := context.Background()
	cv, err := playScript(ctx, c.script, cfg, canvas.WithOnSave(saver))
	if err != nil {
		return err
	}
	if !c.desk {
		if _, err := cv.Save(ctx, f); err != nil {
			return fmt.Errorf("render %s: %w", c.script, err)
		}
		return nil
	}

	t := c.activeTheme
	if t == nil {
		t = theme.Default()
	}
	page := render.Snapshot(cv.Store().Layers(), nil, cv.Size(), cv.Background())
	framed, _ := render.OnDesk(page, t.Desk, c.margin, render.DefaultPageShadow())
	p, err := export.NewPayload(framed, f, "")
	if err != nil {
		return fmt.Errorf("render %s: %w", c.script, err)
	}
	return saver.Save(ctx, p)
}

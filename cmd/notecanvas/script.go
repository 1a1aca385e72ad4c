package main

import (
	"context"
	"fmt"

	"github.com/example/notecanvas/internal/canvas"
	"github.com/example/notecanvas/internal/config"
	"github.com/example/notecanvas/internal/export"
	"github.com/example/notecanvas/internal/script"
)

// playScript builds a canvas from cfg and the script's page settings, then
// replays its events. extra options are applied last.
func playScript(ctx context.Context, path string, cfg *config.Config, extra ...canvas.Option) (*canvas.Canvas, error) {
	return playScriptOver(ctx, path, []canvas.Option{canvas.WithConfig(cfg)}, extra)
}

// playScriptOver is playScript with explicit options to apply before and
// after the script's own page settings.
func playScriptOver(ctx context.Context, path string, before, after []canvas.Option) (*canvas.Canvas, error) {
	s, err := script.Load(path)
	if err != nil {
		return nil, err
	}
	page, err := s.Options()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts := append(append(append([]canvas.Option{}, before...), page...), after...)
	c := canvas.New(opts...)
	if err := s.Run(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// named rewrites the payload name before handing it on. An empty name keeps
// the generated one.
func named(name string, s export.Saver) export.Saver {
	if name == "" {
		return s
	}
	return export.SaverFunc(func(ctx context.Context, p export.Payload) error {
		p.Name = name
		return s.Save(ctx, p)
	})
}

func formatFor(flagValue string, cfg *config.Config) (export.Format, error) {
	v := flagValue
	if v == "" && cfg != nil {
		v = cfg.Format
	}
	return export.ParseFormat(v)
}

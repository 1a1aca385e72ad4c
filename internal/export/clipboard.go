package export

import (
	"context"
	"fmt"

	"github.com/example/notecanvas/internal/clipboard"
	"github.com/example/notecanvas/internal/notify"
)

// ClipboardSaver copies PNG payloads to the system clipboard.
type ClipboardSaver struct {
	Notifier *notify.Notifier
	// Write defaults to clipboard.WritePNG.
	Write func(data []byte) error
}

func (s ClipboardSaver) Save(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Format != FormatPNG {
		return fmt.Errorf("%w: clipboard takes png, not %s", ErrUnsupportedFormat, p.Format)
	}
	write := s.Write
	if write == nil {
		write = clipboard.WritePNG
	}
	if err := write(p.Data); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	s.Notifier.Copy(p.Name)
	return nil
}

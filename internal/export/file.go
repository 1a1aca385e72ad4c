package export

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/example/notecanvas/internal/notify"
)

// FileSaver writes payloads into Dir under their own name.
type FileSaver struct {
	Dir      string
	Notifier *notify.Notifier
}

// Path is where p will be written.
func (s FileSaver) Path(p Payload) string {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, filepath.Base(p.Name))
}

// Save writes through a temporary file in the same directory and renames it
// into place, so a failed write never leaves a partial file under the final
// name.
func (s FileSaver) Save(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(p)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".notecanvas-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	_, werr := tmp.Write(p.Data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmp.Name(), path)
	}
	if werr != nil {
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			log.Printf("remove temp file: %v", err)
		}
		return fmt.Errorf("save %s: %w", path, werr)
	}
	log.Printf("saved %s (%d bytes)", path, len(p.Data))
	s.Notifier.Save(path)
	return nil
}

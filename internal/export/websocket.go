package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/notecanvas/internal/notify"
)

// ErrRejected is returned when the backend answers with a non-ok status.
var ErrRejected = errors.New("export: upload rejected")

// DefaultUploadTimeout bounds an upload whose context has no deadline.
const DefaultUploadTimeout = 30 * time.Second

// UploadHeader is the JSON text frame sent before the binary payload.
type UploadHeader struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Size        int    `json:"size"`
}

// UploadAck is the backend's JSON reply.
type UploadAck struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// WebSocketSaver uploads payloads to a backend over a websocket: one text
// frame with an UploadHeader, one binary frame with the data, then it waits
// for an UploadAck.
type WebSocketSaver struct {
	URL      string
	Dialer   *websocket.Dialer
	Notifier *notify.Notifier
}

func (s WebSocketSaver) Save(ctx context.Context, p Payload) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultUploadTimeout)
		defer cancel()
	}
	d := s.Dialer
	if d == nil {
		d = websocket.DefaultDialer
	}
	conn, _, err := d.DialContext(ctx, s.URL, nil)
	if err != nil {
		return fmt.Errorf("upload dial %s: %w", s.URL, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
		conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	ack, err := exchange(conn, p)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return fmt.Errorf("upload %s: %w", p.Name, err)
	}
	if ack.Status != "ok" {
		return fmt.Errorf("%w: %s", ErrRejected, ack.Error)
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	log.Printf("uploaded %s as %s", p.Name, ack.ID)
	s.Notifier.Upload(p.Name)
	return nil
}

func exchange(conn *websocket.Conn, p Payload) (UploadAck, error) {
	hdr := UploadHeader{
		Type:        "note",
		Name:        p.Name,
		ContentType: p.Format.ContentType(),
		Width:       p.Width,
		Height:      p.Height,
		Size:        len(p.Data),
	}
	if err := conn.WriteJSON(hdr); err != nil {
		return UploadAck{}, err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, p.Data); err != nil {
		return UploadAck{}, err
	}
	typ, msg, err := conn.ReadMessage()
	if err != nil {
		return UploadAck{}, err
	}
	if typ != websocket.TextMessage {
		return UploadAck{}, fmt.Errorf("unexpected ack frame type %d", typ)
	}
	var ack UploadAck
	if err := json.Unmarshal(msg, &ack); err != nil {
		return UploadAck{}, fmt.Errorf("decode ack: %w", err)
	}
	return ack, nil
}

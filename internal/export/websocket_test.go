package export

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type received struct {
	header UploadHeader
	data   []byte
}

func wsServer(t *testing.T, reply func(UploadHeader) *UploadAck) (string, <-chan received) {
	t.Helper()
	got := make(chan received, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		var hdr UploadHeader
		if err := conn.ReadJSON(&hdr); err != nil {
			t.Errorf("read header: %v", err)
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("read data: %v", err)
			return
		}
		got <- received{hdr, data}
		ack := reply(hdr)
		if ack == nil {
			// Hold the connection open without answering.
			conn.ReadMessage()
			return
		}
		b, _ := json.Marshal(ack)
		conn.WriteMessage(websocket.TextMessage, b)
		conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), got
}

func TestWebSocketSaverUploads(t *testing.T) {
	url, got := wsServer(t, func(UploadHeader) *UploadAck { return &UploadAck{Status: "ok", ID: "42"} })
	p := Payload{Name: "note.png", Format: FormatPNG, Width: 3, Height: 2, Data: []byte{9, 8, 7}}
	if err := (WebSocketSaver{URL: url}).Save(context.Background(), p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	r := <-got
	want := UploadHeader{Type: "note", Name: "note.png", ContentType: "image/png", Width: 3, Height: 2, Size: 3}
	if r.header != want {
		t.Fatalf("header %+v, want %+v", r.header, want)
	}
	if string(r.data) != string(p.Data) {
		t.Fatalf("data %v", r.data)
	}
}

func TestWebSocketSaverRejected(t *testing.T) {
	url, _ := wsServer(t, func(UploadHeader) *UploadAck { return &UploadAck{Status: "error", Error: "quota"} })
	err := (WebSocketSaver{URL: url}).Save(context.Background(), Payload{Name: "n.png", Format: FormatPNG})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "quota") {
		t.Fatalf("err = %v", err)
	}
}

func TestWebSocketSaverHonoursContext(t *testing.T) {
	url, _ := wsServer(t, func(UploadHeader) *UploadAck { return nil })
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := (WebSocketSaver{URL: url}).Save(ctx, Payload{Name: "n.png", Format: FormatPNG})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestWebSocketSaverDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()
	if err := (WebSocketSaver{URL: url}).Save(context.Background(), Payload{}); err == nil {
		t.Fatal("expected dial error")
	}
}

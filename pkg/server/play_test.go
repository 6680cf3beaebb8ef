package server

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// Text speeds are slow enough that no reveal tick fires during the test, so
// every action produces exactly one frame.
const playDoc = `{"_conversation": [
  {"_id": 0, "_name": "Guide", "_text": "Hi", "_textSpeed": 30, "_choices": [
    {"_text": "stay", "_connectsTo": 1}, {"_text": "go", "_connectsTo": 2}]},
  {"_id": 1, "_text": "Stay", "_textSpeed": 30, "_connectsTo": -1},
  {"_id": 2, "_text": "Bye", "_textSpeed": 30, "_connectsTo": 9}
]}`

func dialPlay(t *testing.T, ts *testServer, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/play/" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func send(t *testing.T, conn *websocket.Conn, a playAction) playFrame {
	t.Helper()
	if err := conn.WriteJSON(a); err != nil {
		t.Fatalf("write: %v", err)
	}
	return read(t, conn)
}

func read(t *testing.T, conn *websocket.Conn) playFrame {
	t.Helper()
	var f playFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestPlay(t *testing.T) {
	ts := newTestServer(t)
	ts.store.Put(context.Background(), "story", []byte(playDoc))
	conn := dialPlay(t, ts, "story")

	f := read(t, conn)
	if f.State != "presenting" || f.LineID != 0 || f.Name != "Guide" || f.Visible != "" {
		t.Fatalf("first frame = %+v", f)
	}

	f = send(t, conn, playAction{Type: "choose", Index: 0})
	if f.Type != "error" || f.Error != "INVALID_STATE" {
		t.Errorf("choose while presenting = %+v", f)
	}

	f = send(t, conn, playAction{Type: "advance"})
	if f.State != "complete" || f.Visible != "Hi" {
		t.Fatalf("after skip = %+v", f)
	}

	f = send(t, conn, playAction{Type: "advance"})
	if f.State != "choosing" || len(f.Choices) != 2 || f.Choices[1] != "go" {
		t.Fatalf("after advance = %+v", f)
	}

	f = send(t, conn, playAction{Type: "choose", Index: 1})
	if f.State != "presenting" || f.LineID != 2 {
		t.Fatalf("after choose = %+v", f)
	}

	send(t, conn, playAction{Type: "advance"})
	f = send(t, conn, playAction{Type: "advance"})
	if f.State != "idle" || f.Reason != "dangling" {
		t.Fatalf("final frame = %+v", f)
	}

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected normal close, got %v", err)
	}
}

func TestPlayMissingDocument(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/play/ghost"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %+v", resp)
	}
}

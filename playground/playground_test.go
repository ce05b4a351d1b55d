package playground_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/playground"
)

type reply struct {
	Type       string                 `json:"type"`
	Directives string                 `json:"directives"`
	Listing    []string               `json:"listing"`
	Size       int                    `json:"size"`
	Errors     []playground.LineError `json:"errors"`
	Text       string                 `json:"text"`
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(playground.NewHandler())
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Could not dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, message interface{}) reply {
	t.Helper()

	if err := conn.WriteJSON(message); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var r reply
	if err := conn.ReadJSON(&r); err != nil {
		t.Fatalf("read: %v", err)
	}
	return r
}

func TestAssembleOverSocket(t *testing.T) {
	conn := dial(t)

	r := roundTrip(t, conn, map[string]string{"type": "assemble", "source": "\tld hl, $1234\n\tnop\n"})
	if r.Type != "result" {
		t.Fatalf("Expected a result message, got %+v", r)
	}
	if r.Directives != "dc\t$21,$34,$12\ndc\t$00\n" {
		t.Errorf("Unexpected directives %q", r.Directives)
	}
	if r.Size != 4 {
		t.Errorf("Expected 4 bytes, got %d", r.Size)
	}
	if len(r.Listing) != 2 {
		t.Errorf("Expected 2 listing lines, got %d", len(r.Listing))
	}

	// the connection stays open for further requests
	r = roundTrip(t, conn, map[string]string{"type": "assemble", "source": "\tnop\n\tjr missing\n"})
	if r.Type != "errors" {
		t.Fatalf("Expected an errors message, got %+v", r)
	}
	if len(r.Errors) != 1 || r.Errors[0].Line != 2 {
		t.Errorf("Expected one error on line 2, got %+v", r.Errors)
	}
}

func TestUnknownMessageType(t *testing.T) {
	conn := dial(t)

	r := roundTrip(t, conn, map[string]string{"type": "run"})
	if r.Type != "console" || !strings.Contains(r.Text, "unknown message type") {
		t.Errorf("Expected a console message about the unknown type, got %+v", r)
	}
}

func TestServesPage(t *testing.T) {
	server := httptest.NewServer(playground.NewHandler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Z80 Hexer") {
		t.Errorf("Expected the playground page, got status %d", resp.StatusCode)
	}

	missing, err := http.Get(server.URL + "/nothing-here")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown path, got %d", missing.StatusCode)
	}
}

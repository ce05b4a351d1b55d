package util_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.gatech.edu/ECEInnovation/Z80-Hexer/util"
)

func TestLogFPostsToEndpoint(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received <- string(b)
	}))
	defer server.Close()

	util.LoggingEnabled = true
	util.LogEndpoint = server.URL
	defer func() {
		util.LoggingEnabled = false
		util.LogEndpoint = ""
	}()

	util.LogF("assembled %d lines", 3)

	select {
	case msg := <-received:
		if msg != "assembled 3 lines" {
			t.Errorf("Expected \"assembled 3 lines\", got %q", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Expected the message to reach the log endpoint")
	}
}

func TestLogFDisabled(t *testing.T) {
	hit := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit <- struct{}{}
	}))
	defer server.Close()

	util.LoggingEnabled = false
	util.LogEndpoint = server.URL
	defer func() { util.LogEndpoint = "" }()

	util.LogF("should not be sent")

	select {
	case <-hit:
		t.Errorf("Expected no request while logging is disabled")
	case <-time.After(100 * time.Millisecond):
	}
}

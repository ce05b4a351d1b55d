package util

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang/glog"
)

var LoggingEnabled = false

// LogEndpoint receives every message as a text/plain POST when set.
var LogEndpoint = ""

func LogF(format string, args ...interface{}) {
	if !LoggingEnabled {
		return
	}
	message := fmt.Sprintf(format, args...)
	glog.InfoDepth(1, message)

	if LogEndpoint == "" {
		return
	}
	go func(endpoint string) {
		resp, err := http.Post(endpoint, "text/plain", strings.NewReader(message))
		if err != nil {
			glog.V(2).Infof("log sink unreachable: %v", err)
			return
		}
		resp.Body.Close()
	}(LogEndpoint)
}

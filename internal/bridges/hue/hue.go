package hue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Logger is the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// defaultTimeout bounds bridge requests when config leaves it unset.
const defaultTimeout = 10 * time.Second

// baseURL builds the v1 API root. The token rides in the path, so
// URLs must never appear in log output.
func baseURL(addr, token string) string {
	return fmt.Sprintf("http://%s/api/%s", addr, token)
}

// putJSON sends a JSON body to the bridge. Failures are logged, not
// returned: actuation is best effort and never feeds back into
// automation state.
func putJSON(client *http.Client, logger Logger, id, url string, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error("hue request encoding failed", "device", id, "error", err)
		return
	}

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		logger.Error("hue request build failed", "device", id, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("hue request failed", "device", id, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("hue request rejected", "device", id, "status", resp.Status)
	}
}

package providers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// statusError turns a non-2xx response into an error carrying the status
// code and up to 4 KiB of the body.
func statusError(resp *http.Response) error {
	if resp == nil {
		return fmt.Errorf("model: empty http response")
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if body := strings.TrimSpace(string(raw)); body != "" {
		return fmt.Errorf("model: http status %d body=%s", resp.StatusCode, body)
	}
	return fmt.Errorf("model: http status %d", resp.StatusCode)
}

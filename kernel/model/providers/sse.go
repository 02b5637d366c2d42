package providers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errStopSSE = errors.New("providers: stop sse")

// readSSE parses a server-sent-event stream and invokes onData once per
// complete data payload. A "[DONE]" payload ends the stream. onData may
// return errStopSSE to stop early without an error.
func readSSE(reader io.Reader, onData func([]byte) error) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	var data strings.Builder
	flush := func() error {
		payload := strings.TrimSpace(data.String())
		data.Reset()
		switch payload {
		case "":
			return nil
		case "[DONE]":
			return errStopSSE
		}
		return onData([]byte(payload))
	}

	for scanner.Scan() {
		line := scanner.Text()
		// A blank line terminates one event.
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				if errors.Is(err, errStopSSE) {
					return nil
				}
				return err
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(rest))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("providers: sse scanner: %w", err)
	}
	if err := flush(); err != nil && !errors.Is(err, errStopSSE) {
		return err
	}
	return nil
}

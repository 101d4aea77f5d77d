// Package client is the consuming half of the chat wire protocol: it
// reconstructs the streamed message, classifies it once complete, and
// drives the action dispatcher.
package client

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"clubassist/types"
)

// Transcript is one fully received assistant response.
type Transcript struct {
	Text        string
	RateLimited bool
	EndChat     bool
}

// ReadStream consumes frames until the [DONE] sentinel, concatenating text
// fields in arrival order. onText, when non-nil, is the incremental
// rendering consumer; it sees each delta as it arrives.
func ReadStream(r io.Reader, onText func(string)) (*Transcript, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	transcript := &Transcript{}
	var sb strings.Builder

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == types.StreamDone {
			transcript.Text = sb.String()
			return transcript, nil
		}

		var event types.StreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			continue
		}
		if event.Text != "" {
			sb.WriteString(event.Text)
			if onText != nil {
				onText(event.Text)
			}
		}
		if event.RateLimited {
			transcript.RateLimited = true
		}
		if event.EndChat {
			transcript.EndChat = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.ErrUnexpectedEOF
}

package api

import (
	"encoding/json"
	"fmt"
	"io"

	"clubassist/types"
)

// Flusher pairs a writer with an explicit flush, the shape fiber's body
// stream writer exposes. A flush error means the client went away.
type Flusher interface {
	io.Writer
	Flush() error
}

// WriteEvent emits one frame of the chat stream protocol:
// "data: " + JSON + "\n\n", flushed immediately.
func WriteEvent(w Flusher, event types.StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

// WriteDone emits the terminal sentinel frame. Nothing may follow it.
func WriteDone(w Flusher) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", types.StreamDone); err != nil {
		return err
	}
	return w.Flush()
}

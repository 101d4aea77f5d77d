package api

import (
	"bufio"
	"bytes"
	"testing"

	"clubassist/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEventFraming(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, WriteEvent(w, types.StreamEvent{Text: "hello"}))
	require.NoError(t, WriteEvent(w, types.StreamEvent{RateLimited: true}))
	require.NoError(t, WriteEvent(w, types.StreamEvent{EndChat: true}))
	require.NoError(t, WriteDone(w))

	// the wire contract is byte-for-byte
	assert.Equal(t,
		"data: {\"text\":\"hello\"}\n\n"+
			"data: {\"rateLimited\":true}\n\n"+
			"data: {\"endChat\":true}\n\n"+
			"data: [DONE]\n\n",
		buf.String(),
	)
}

func TestWriteDoneIsTerminal(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, WriteEvent(w, types.StreamEvent{Text: "bye"}))
	require.NoError(t, WriteDone(w))

	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("data: [DONE]\n\n")))
}

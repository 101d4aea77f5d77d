package client

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStreamReconstructsText(t *testing.T) {
	wire := "data: {\"text\":\"Sure! \"}\n\n" +
		"data: {\"text\":\"Opening VPN Setup \"}\n\n" +
		"data: {\"text\":\"now—\"}\n\n" +
		"data: [DONE]\n\n"

	var deltas []string
	transcript, err := ReadStream(strings.NewReader(wire), func(s string) {
		deltas = append(deltas, s)
	})
	require.NoError(t, err)

	// concatenating deltas in arrival order reproduces the full message
	assert.Equal(t, "Sure! Opening VPN Setup now—", transcript.Text)
	assert.Equal(t, []string{"Sure! ", "Opening VPN Setup ", "now—"}, deltas)
	assert.False(t, transcript.RateLimited)
	assert.False(t, transcript.EndChat)
}

func TestReadStreamRateLimitedFlags(t *testing.T) {
	wire := "data: {\"text\":\"Ugh, I'm swamped right now.\"}\n\n" +
		"data: {\"rateLimited\":true}\n\n" +
		"data: {\"endChat\":true}\n\n" +
		"data: [DONE]\n\n"

	transcript, err := ReadStream(strings.NewReader(wire), nil)
	require.NoError(t, err)
	assert.True(t, transcript.RateLimited)
	assert.True(t, transcript.EndChat)
}

func TestReadStreamTruncatedIsAnError(t *testing.T) {
	wire := "data: {\"text\":\"partial\"}\n\n"

	_, err := ReadStream(strings.NewReader(wire), nil)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadStreamIgnoresUnknownFrames(t *testing.T) {
	wire := ": comment\n\n" +
		"data: not-json\n\n" +
		"data: {\"text\":\"ok\"}\n\n" +
		"data: [DONE]\n\n"

	transcript, err := ReadStream(strings.NewReader(wire), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", transcript.Text)
}

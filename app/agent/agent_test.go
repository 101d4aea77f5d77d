package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clubassist/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGateway(srv.URL, "test-key", "test-model", 5*time.Second)
}

func TestCompleteReturnsText(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	})

	msg, err := g.Complete(context.Background(), BuildMessages("persona", nil, "hello"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hi there", msg.Content)
	assert.Nil(t, FirstInvocation(msg))
}

func TestCompleteToolCall(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.NotNil(t, payload["tools"])

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"create_form","arguments":"{\"title\":\"Signup\",\"fields\":[]}"}},
			{"id":"call_2","type":"function","function":{"name":"create_form","arguments":"{}"}}
		]}}]}`))
	})

	msg, err := g.Complete(context.Background(), BuildMessages("persona", nil, "make a form"), []Tool{CreateFormTool()})
	require.NoError(t, err)

	// only the first call is honored
	call := FirstInvocation(msg)
	require.NotNil(t, call)
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, "create_form", call.Name)

	var spec types.FormSpec
	require.NoError(t, json.Unmarshal(call.Args, &spec))
	assert.Equal(t, "Signup", spec.Title)
}

func TestCompleteModelUnavailable(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := g.Complete(context.Background(), BuildMessages("persona", nil, "hello"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrModelUnavailable)
}

func TestStreamCompletionYieldsDeltas(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(
			"data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n" +
				"data: [DONE]\n\n"))
	})

	stream, err := g.StreamCompletion(context.Background(), BuildMessages("persona", nil, "hi"))
	require.NoError(t, err)
	defer stream.Close()

	var out string
	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out += delta
	}
	assert.Equal(t, "Hello", out)
}

func TestStreamOutlivesHeaderTimeout(t *testing.T) {
	// the timeout bounds time to response headers; a body that keeps
	// trickling past it must still be relayed in full
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"slow\"}}]}\n\n"))
		w.(http.Flusher).Flush()
		time.Sleep(150 * time.Millisecond)
		w.Write([]byte(
			"data: {\"choices\":[{\"delta\":{\"content\":\" stream\"}}]}\n\n" +
				"data: [DONE]\n\n"))
	}))
	t.Cleanup(srv.Close)
	g := NewGateway(srv.URL, "", "test-model", 50*time.Millisecond)

	stream, err := g.StreamCompletion(context.Background(), BuildMessages("persona", nil, "hi"))
	require.NoError(t, err)
	defer stream.Close()

	var out string
	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out += delta
	}
	assert.Equal(t, "slow stream", out)
}

func TestFunctionCallingTwoRoundTrips(t *testing.T) {
	var requests int
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch requests {
		case 1:
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[
				{"id":"call_1","type":"function","function":{"name":"create_form","arguments":"{\"title\":\"Feedback\",\"fields\":[]}"}}
			]}}]}`))
		case 2:
			// round 2 must carry the tool result back to the model
			body, _ := io.ReadAll(r.Body)
			var payload struct {
				Messages []Message `json:"messages"`
			}
			require.NoError(t, json.Unmarshal(body, &payload))
			last := payload.Messages[len(payload.Messages)-1]
			assert.Equal(t, "tool", last.Role)
			assert.Equal(t, "call_1", last.ToolCallID)
			assert.Contains(t, last.Content, "shareLink")

			w.Header().Set("Content-Type", "text/event-stream")
			w.Write([]byte(
				"data: {\"choices\":[{\"delta\":{\"content\":\"Done, here is your form.\"}}]}\n\n" +
					"data: [DONE]\n\n"))
		}
	})

	messages := BuildMessages(FormBuilderSystemPrompt(), nil, "make a feedback form")
	reply, err := g.Complete(context.Background(), messages, []Tool{CreateFormTool()})
	require.NoError(t, err)

	call := FirstInvocation(reply)
	require.NotNil(t, call)

	result := `{"success":true,"shareLink":"https://club.example.edu/f/abc","manageLink":"https://club.example.edu/f/abc/manage"}`
	stream, err := g.ContinueWithResult(context.Background(), messages, reply, call, result)
	require.NoError(t, err)
	defer stream.Close()

	delta, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Done, here is your form.", delta)

	_, err = stream.Recv()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, requests)
}

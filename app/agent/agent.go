package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clubassist/types"
)

// Message is one turn in the wire format of the chat completions API.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// FunctionInvocationRequest is the gateway's translation of a model tool
// call: the caller executes the named capability and feeds the result back
// for the second round trip.
type FunctionInvocationRequest struct {
	ID   string
	Name string
	Args json.RawMessage
}

// Gateway talks to an OpenAI-compatible chat completions endpoint.
type Gateway struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewGateway bounds time-to-first-byte with timeout; a streaming body has
// no total deadline and is bounded by the request context instead, so a
// slow but healthy stream is never cut mid-relay.
func NewGateway(baseURL, apiKey, model string, timeout time.Duration) *Gateway {
	return &Gateway{
		client: &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: timeout},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

// BuildMessages assembles the wire history: persona+context as the system
// message, the prior conversation, the new user message last.
func BuildMessages(systemPrompt string, history []types.ConversationMessage, newMessage string) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: types.RoleUser, Content: newMessage})
	return messages
}

// Complete performs one non-streaming round trip. When tools are declared
// the model may answer with tool calls instead of text; only the first is
// honored by FirstInvocation.
func (g *Gateway) Complete(ctx context.Context, messages []Message, tools []Tool) (Message, error) {
	payload := map[string]any{
		"model":    g.model,
		"messages": messages,
	}
	if len(tools) > 0 {
		payload["tools"] = tools
	}

	resp, err := g.doRequest(ctx, payload)
	if err != nil {
		return Message{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Message{}, types.ModelUnavailableError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return Message{}, types.ModelUnavailableError(fmt.Errorf("http %d: %s", resp.StatusCode, string(data)))
	}

	var result struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return Message{}, types.ModelUnavailableError(fmt.Errorf("decode: %w", err))
	}
	if len(result.Choices) == 0 {
		return Message{}, types.ModelUnavailableError(fmt.Errorf("empty choices"))
	}
	return result.Choices[0].Message, nil
}

// FirstInvocation extracts the single honored tool call from a round-1
// reply, or nil if the model answered with text. Extra calls are dropped to
// keep the side-effect surface deterministic.
func FirstInvocation(msg Message) *FunctionInvocationRequest {
	if len(msg.ToolCalls) == 0 {
		return nil
	}
	call := msg.ToolCalls[0]
	return &FunctionInvocationRequest{
		ID:   call.ID,
		Name: call.Function.Name,
		Args: json.RawMessage(call.Function.Arguments),
	}
}

// ContinueWithResult runs round 2 of the function-calling protocol: the
// executed capability's outcome goes back to the model, which always
// answers with text this time.
func (g *Gateway) ContinueWithResult(ctx context.Context, messages []Message, assistantMsg Message, call *FunctionInvocationRequest, result string) (*Stream, error) {
	followup := append(append([]Message{}, messages...), assistantMsg, Message{
		Role:       "tool",
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    result,
	})
	return g.StreamCompletion(ctx, followup)
}

// StreamCompletion opens a streaming round trip and yields text deltas as
// they arrive.
func (g *Gateway) StreamCompletion(ctx context.Context, messages []Message) (*Stream, error) {
	payload := map[string]any{
		"model":    g.model,
		"messages": messages,
		"stream":   true,
	}

	resp, err := g.doRequest(ctx, payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, types.ModelUnavailableError(fmt.Errorf("http %d: %s", resp.StatusCode, string(data)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{
		body:    resp.Body,
		scanner: scanner,
	}, nil
}

func (g *Gateway) doRequest(ctx context.Context, payload map[string]any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, types.ModelUnavailableError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, types.ModelUnavailableError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, types.ModelUnavailableError(err)
	}
	return resp, nil
}

// Stream yields incremental text from an upstream streaming response.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Recv returns the next text delta, io.EOF once the upstream stream is
// done. Empty deltas (role frames, tool-call frames) are skipped.
func (s *Stream) Recv() (string, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == types.StreamDone {
			return "", io.EOF
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		return chunk.Choices[0].Delta.Content, nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", types.ModelUnavailableError(err)
	}
	return "", io.EOF
}

func (s *Stream) Close() error {
	return s.body.Close()
}

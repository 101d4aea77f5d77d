package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"

	"clubassist/app/agent"
	"clubassist/app/forms"
	"clubassist/app/retrieval"
	"clubassist/types"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var errUnknownFunction = errors.New("unknown function")

// ChatHandler serves the assistant chat widget and the form-builder chat.
type ChatHandler struct {
	assembler *retrieval.Assembler
	fetcher   *retrieval.Fetcher
	formatter *retrieval.Formatter
	gateway   *agent.Gateway
	forms     forms.Creator

	matchCount     int
	matchThreshold float64
	logger         zerolog.Logger
}

func NewChatHandler(
	assembler *retrieval.Assembler,
	fetcher *retrieval.Fetcher,
	formatter *retrieval.Formatter,
	gateway *agent.Gateway,
	formsClient forms.Creator,
	matchCount int,
	matchThreshold float64,
	logger zerolog.Logger,
) *ChatHandler {
	return &ChatHandler{
		assembler:      assembler,
		fetcher:        fetcher,
		formatter:      formatter,
		gateway:        gateway,
		forms:          formsClient,
		matchCount:     matchCount,
		matchThreshold: matchThreshold,
		logger:         logger,
	}
}

// HandleChat answers a question from the chat widget: retrieve context,
// then stream the model reply over the event-stream protocol.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	params, err := h.parseTurn(c)
	if err != nil {
		return err
	}
	query, _ := params.LastUserMessage()
	history := params.History()

	h.startEventStream(c, func(ctx context.Context, w Flusher) {
		contextText := h.buildContext(ctx, query)
		messages := agent.BuildMessages(agent.AssistantSystemPrompt(contextText), history, query)

		stream, err := h.gateway.StreamCompletion(ctx, messages)
		if err != nil {
			h.logger.Warn().Err(err).Msg("model unavailable")
			h.writeBusy(w)
			return
		}
		defer stream.Close()
		h.relay(w, stream)
	})
	return nil
}

// HandleFormsChat drives the conversational form builder. Round 1 may
// yield a create_form invocation; the capability runs here and its result
// goes back for round 2, which always yields text.
func (h *ChatHandler) HandleFormsChat(c *fiber.Ctx) error {
	params, err := h.parseTurn(c)
	if err != nil {
		return err
	}
	newMessage, _ := params.LastUserMessage()
	history := params.History()
	owner := params.UserName

	h.startEventStream(c, func(ctx context.Context, w Flusher) {
		messages := agent.BuildMessages(agent.FormBuilderSystemPrompt(), history, newMessage)

		reply, err := h.gateway.Complete(ctx, messages, []agent.Tool{agent.CreateFormTool()})
		if err != nil {
			h.logger.Warn().Err(err).Msg("model unavailable")
			h.writeBusy(w)
			return
		}

		call := agent.FirstInvocation(reply)
		if call == nil {
			if WriteEvent(w, types.StreamEvent{Text: reply.Content}) != nil {
				return
			}
			WriteDone(w)
			return
		}

		result := h.executeFunction(ctx, owner, call)
		stream, err := h.gateway.ContinueWithResult(ctx, messages, reply, call, result)
		if err != nil {
			h.logger.Warn().Err(err).Msg("model unavailable on function follow-up")
			h.writeBusy(w)
			return
		}
		defer stream.Close()
		h.relay(w, stream)
	})
	return nil
}

// parseTurn validates the request body and the malformed-turn rule before
// any external call is made.
func (h *ChatHandler) parseTurn(c *fiber.Ctx) (*types.ChatParams, error) {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return nil, ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return nil, NewValidationError(errors)
	}
	if _, err := params.LastUserMessage(); err != nil {
		return nil, ErrMalformedTurn()
	}
	return &params, nil
}

// buildContext runs the retrieval pipeline and degrades to the sentinel
// context when any of it fails; a retrieval failure never fails the turn.
func (h *ChatHandler) buildContext(ctx context.Context, query string) string {
	result, err := h.assembler.Retrieve(ctx, query, h.matchCount, h.matchThreshold)
	if err != nil {
		h.logger.Warn().Err(err).Msg("retrieval degraded, continuing without context")
		return h.formatter.FormatContext(types.RetrievalResult{}, nil)
	}

	fullDocs := h.fetcher.FetchAll(ctx, result.FullSourceURLs)
	return h.formatter.FormatContext(result, fullDocs)
}

// executeFunction runs the invoked capability and renders its outcome as
// the tool result for round 2. Failures are reported to the model, not
// escalated.
func (h *ChatHandler) executeFunction(ctx context.Context, owner string, call *agent.FunctionInvocationRequest) string {
	fail := func(err error) string {
		h.logger.Warn().Err(err).Str("function", call.Name).Msg("function execution failed")
		out, _ := json.Marshal(map[string]any{"success": false, "error": err.Error()})
		return string(out)
	}

	if call.Name != "create_form" {
		return fail(types.FunctionExecutionError(call.Name, errUnknownFunction))
	}

	var spec types.FormSpec
	if err := json.Unmarshal(call.Args, &spec); err != nil {
		return fail(types.FunctionExecutionError(call.Name, err))
	}

	form, err := h.forms.Create(ctx, owner, spec)
	if err != nil {
		return fail(err)
	}

	out, _ := json.Marshal(map[string]any{
		"success":    true,
		"shareLink":  form.ShareLink,
		"manageLink": form.ManageLink,
	})
	return string(out)
}

// relay copies model deltas to the client frame by frame, ending with the
// terminal sentinel. A write failure means the client disconnected; the
// context is cancelled by startEventStream and generation stops silently.
func (h *ChatHandler) relay(w Flusher, stream *agent.Stream) {
	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.logger.Warn().Err(err).Msg("stream interrupted")
			h.writeBusy(w)
			return
		}
		if WriteEvent(w, types.StreamEvent{Text: delta}) != nil {
			return
		}
	}
	WriteDone(w)
}

// writeBusy emits the rate-limited flow: canned reply, the rateLimited and
// endChat flags, then the sentinel.
func (h *ChatHandler) writeBusy(w Flusher) {
	if WriteEvent(w, types.StreamEvent{Text: agent.BusyReply}) != nil {
		return
	}
	if WriteEvent(w, types.StreamEvent{RateLimited: true}) != nil {
		return
	}
	if WriteEvent(w, types.StreamEvent{EndChat: true}) != nil {
		return
	}
	WriteDone(w)
}

// startEventStream switches the response to the event-stream protocol and
// runs fn with a context that is cancelled once the body writer returns
// (client gone or stream complete).
func (h *ChatHandler) startEventStream(c *fiber.Ctx, fn func(ctx context.Context, w Flusher)) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		fn(ctx, &cancellingFlusher{w: w, cancel: cancel})
	})
}

// cancellingFlusher cancels the request context on the first failed write
// or flush so upstream generation is abandoned when the client hangs up.
type cancellingFlusher struct {
	w      *bufio.Writer
	cancel context.CancelFunc
	failed bool
}

func (f *cancellingFlusher) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		f.fail()
	}
	return n, err
}

func (f *cancellingFlusher) Flush() error {
	err := f.w.Flush()
	if err != nil {
		f.fail()
	}
	return err
}

func (f *cancellingFlusher) fail() {
	if !f.failed {
		f.failed = true
		f.cancel()
	}
}

package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

// ChatParams is the body of POST /api/v1/chat. Messages carry the whole
// conversation so far, last message included; the server holds no session.
type ChatParams struct {
	Messages []ConversationMessage `json:"messages" validate:"required,min=1,dive"`
	UserName string                `json:"user_name,omitempty"`
}

func (params *ChatParams) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

// LastUserMessage enforces the malformed-turn rule: the trailing message
// must exist, be from the user, and be non-blank. Checked before any
// external call is made.
func (params *ChatParams) LastUserMessage() (string, error) {
	if len(params.Messages) == 0 {
		return "", ErrMalformedTurn
	}
	last := params.Messages[len(params.Messages)-1]
	if last.Role != RoleUser || strings.TrimSpace(last.Content) == "" {
		return "", ErrMalformedTurn
	}
	return last.Content, nil
}

// History returns every message except the trailing user message.
func (params *ChatParams) History() []ConversationMessage {
	if len(params.Messages) == 0 {
		return nil
	}
	return params.Messages[:len(params.Messages)-1]
}

package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DocumentChunk is one ingested fragment of an institutional document.
// Rows are written by the ingestion pipeline and read-only here.
type DocumentChunk struct {
	ID         uuid.UUID
	ChunkText  string
	Embedding  []float32
	SourceFile string
	SourceURL  *string
	Similarity float64
	CreatedAt  time.Time
}

// RetrievalResult is the ranked outcome of one similarity search.
// Chunks are ordered by descending similarity. FullSourceURLs holds the
// deduplicated source URLs worth fetching in full, capped at two, in the
// same rank order as the chunks they came from.
type RetrievalResult struct {
	Chunks         []DocumentChunk
	FullSourceURLs []string
}

func (r RetrievalResult) Empty() bool {
	return len(r.Chunks) == 0
}

// FullDocument is a fetched complete source, already reduced to plain text.
type FullDocument struct {
	SourceURL string
	Text      string
}

type ConversationMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// StreamEvent is one frame of the chat stream. Exactly one of the fields
// is meaningful per event; the terminal frame is the bare [DONE] sentinel,
// which is not an event at all.
type StreamEvent struct {
	Text        string `json:"text,omitempty"`
	RateLimited bool   `json:"rateLimited,omitempty"`
	EndChat     bool   `json:"endChat,omitempty"`
}

// StreamDone is the literal payload of the terminal frame.
const StreamDone = "[DONE]"

type TriggerAction string

const (
	ActionContinue    TriggerAction = "continue"
	ActionAutoClose   TriggerAction = "autoClose"
	ActionNavigate    TriggerAction = "navigate"
	ActionOpenTabs    TriggerAction = "openTabs"
	ActionRefresh     TriggerAction = "refresh"
	ActionEmailThreat TriggerAction = "emailThreat"
)

// TriggerDecision is derived once from a completed assistant message.
// TabPaths may accompany any action; TargetPath only navigate.
type TriggerDecision struct {
	Action       TriggerAction `json:"action"`
	TargetPath   string        `json:"targetPath,omitempty"`
	TabPaths     []string      `json:"tabPaths,omitempty"`
	RefreshCount int           `json:"refreshCount,omitempty"`
}

// FormSpec is the argument payload of the create_form capability.
type FormSpec struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Fields      []FormField `json:"fields"`
}

type FormField struct {
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// Form is what the form-persistence service hands back.
type Form struct {
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	Owner      string `json:"owner"`
	ShareLink  string `json:"shareLink"`
	ManageLink string `json:"manageLink"`
}

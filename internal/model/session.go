package model

import "time"

// Mode is the top-level intent for a session: discussing individual
// components or building a full PC. Empty until the user picks one.
type Mode string

const (
	ModeUnset   Mode = ""
	ModeDiscuss Mode = "discuss"
	ModeBuild   Mode = "build"
)

// Valid reports whether m is one of the two settable modes.
func (m Mode) Valid() bool {
	return m == ModeDiscuss || m == ModeBuild
}

// View is the panel a consumer should render for the session.
type View string

const (
	ViewChat         View = "chat"
	ViewBuildSummary View = "build"
)

// Message is one turn of the conversation. Messages are immutable once
// appended; transcript order is insertion order.
type Message struct {
	ID              int64     `json:"id"`
	Text            string    `json:"text"`
	IsFromAssistant bool      `json:"is_from_assistant"`
	Timestamp       time.Time `json:"timestamp"`
}

// Component is one hardware part of a build, post-normalization.
type Component struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Price       Price    `json:"price"`
	Specs       SpecList `json:"specs"`
	Icon        string   `json:"icon"`
	SourceIndex int      `json:"source_index"`
}

// BuildResult is the current proposed build. It is replaced wholesale on
// every successful build response and never partially mutated; TotalPrice
// is always the aggregator's sum over Components.
type BuildResult struct {
	Components      []Component `json:"components"`
	TotalPrice      float64     `json:"total_price"`
	RequestedBudget float64     `json:"requested_budget,omitempty"`
}

// Session is the aggregate root for one user's interaction. CorrelationID
// is the opaque token issued by the remote assistant and echoed on every
// subsequent request; it is distinct from the local ID.
type Session struct {
	ID            string       `json:"id"`
	Mode          Mode         `json:"mode"`
	View          View         `json:"view"`
	CorrelationID string       `json:"correlation_id,omitempty"`
	BuildType     string       `json:"build_type"`
	Messages      []Message    `json:"messages"`
	Build         *BuildResult `json:"build,omitempty"`
	Loading       bool         `json:"loading"`
	NextMessageID int64        `json:"next_message_id"`
	Epoch         int64        `json:"epoch"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// AppendMessage adds a message to the transcript with the next monotonic
// id and returns it. IDs never repeat within a session, even under rapid
// successive appends.
func (s *Session) AppendMessage(text string, fromAssistant bool) Message {
	s.NextMessageID++
	msg := Message{
		ID:              s.NextMessageID,
		Text:            text,
		IsFromAssistant: fromAssistant,
		Timestamp:       time.Now(),
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
	return msg
}

// ReplaceTranscript drops the whole transcript and starts it over with a
// single assistant message. The id counter keeps counting up so ids stay
// unique across the clear.
func (s *Session) ReplaceTranscript(text string) {
	s.Messages = s.Messages[:0]
	s.AppendMessage(text, true)
}

package model

import "time"

// SessionState is the render-ready snapshot published after every
// controller operation. Consumers draw from it and nothing else.
type SessionState struct {
	SessionID     string       `json:"session_id"`
	Mode          Mode         `json:"mode"`
	View          View         `json:"view"`
	BuildType     string       `json:"build_type"`
	Loading       bool         `json:"loading"`
	Messages      []Message    `json:"messages"`
	Build         *BuildResult `json:"build,omitempty"`
	TotalPrice    float64      `json:"total_price"`
	CorrelationID string       `json:"correlation_id,omitempty"`
}

// Snapshot captures the session's current render state. The message slice
// and build are copied so later mutations can't leak into a snapshot a
// consumer already holds.
func (s *Session) Snapshot() *SessionState {
	state := &SessionState{
		SessionID:     s.ID,
		Mode:          s.Mode,
		View:          s.View,
		BuildType:     s.BuildType,
		Loading:       s.Loading,
		Messages:      append([]Message(nil), s.Messages...),
		CorrelationID: s.CorrelationID,
	}
	if s.Build != nil {
		b := *s.Build
		b.Components = append([]Component(nil), s.Build.Components...)
		state.Build = &b
		state.TotalPrice = b.TotalPrice
	}
	return state
}

// SessionSummary is a transcript-free listing entry.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	Mode         Mode      `json:"mode"`
	BuildType    string    `json:"build_type"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Summary builds the listing entry for the session.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		SessionID:    s.ID,
		Mode:         s.Mode,
		BuildType:    s.BuildType,
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

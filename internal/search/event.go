package search

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fitseek/fitseek/internal/types"
)

// EventKind identifies one variant of the search event stream.
type EventKind string

const (
	EventHello     EventKind = "hello"
	EventMeta      EventKind = "meta"
	EventProgress  EventKind = "progress"
	EventMatch     EventKind = "match"
	EventCancelled EventKind = "cancelled"
	EventDone      EventKind = "done"
	EventError     EventKind = "error"
)

// Event is the closed set of frames a search run emits. Exactly one of
// cancelled, done or error terminates a stream; nothing follows it.
type Event interface {
	Kind() EventKind
}

// HelloEvent opens every stream.
type HelloEvent struct {
	SearchID  string    `json:"searchId,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// MetaEvent reports the candidate total once enumeration completes. Links is
// the listing count in single-seller mode and the discovered seller count in
// browse-all mode.
type MetaEvent struct {
	SearchID string `json:"searchId,omitempty"`
	Links    int    `json:"links"`
	Seller   string `json:"seller,omitempty"`
}

// ProgressEvent reports the running counters. Total is the work known so
// far; in browse-all mode it grows as seller indexes are enumerated.
type ProgressEvent struct {
	SearchID  string `json:"searchId,omitempty"`
	Phase     string `json:"phase,omitempty"`
	Seller    string `json:"seller,omitempty"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Matches   int    `json:"matches"`
}

// MatchEvent carries one listing that passed the tolerance matcher.
type MatchEvent struct {
	SearchID string            `json:"searchId,omitempty"`
	Item     types.MatchResult `json:"item"`
	Seller   string            `json:"seller,omitempty"`
}

// CancelledEvent terminates a stream whose job was cancelled before normal
// completion.
type CancelledEvent struct {
	SearchID string `json:"searchId,omitempty"`
}

// DoneEvent terminates a stream that completed normally.
type DoneEvent struct {
	SearchID string `json:"searchId,omitempty"`
}

// ErrorEvent terminates a stream that hit an unrecoverable failure.
type ErrorEvent struct {
	SearchID string `json:"searchId,omitempty"`
	Message  string `json:"message"`
}

func (HelloEvent) Kind() EventKind     { return EventHello }
func (MetaEvent) Kind() EventKind      { return EventMeta }
func (ProgressEvent) Kind() EventKind  { return EventProgress }
func (MatchEvent) Kind() EventKind     { return EventMatch }
func (CancelledEvent) Kind() EventKind { return EventCancelled }
func (DoneEvent) Kind() EventKind      { return EventDone }
func (ErrorEvent) Kind() EventKind     { return EventError }

// MarshalEvent is the single serialization point for the event stream. The
// payload always carries a "type" field so consumers can dispatch without
// transport framing.
func MarshalEvent(e Event) ([]byte, error) {
	var payload any

	switch ev := e.(type) {
	case HelloEvent:
		payload = struct {
			Type EventKind `json:"type"`
			HelloEvent
		}{EventHello, ev}
	case MetaEvent:
		payload = struct {
			Type EventKind `json:"type"`
			MetaEvent
		}{EventMeta, ev}
	case ProgressEvent:
		payload = struct {
			Type EventKind `json:"type"`
			ProgressEvent
		}{EventProgress, ev}
	case MatchEvent:
		payload = struct {
			Type EventKind `json:"type"`
			MatchEvent
		}{EventMatch, ev}
	case CancelledEvent:
		payload = struct {
			Type EventKind `json:"type"`
			CancelledEvent
		}{EventCancelled, ev}
	case DoneEvent:
		payload = struct {
			Type EventKind `json:"type"`
			DoneEvent
		}{EventDone, ev}
	case ErrorEvent:
		payload = struct {
			Type EventKind `json:"type"`
			ErrorEvent
		}{EventError, ev}
	default:
		return nil, fmt.Errorf("unknown event type %T", e)
	}

	return json.Marshal(payload)
}

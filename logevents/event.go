// Package logevents decodes the append-only JSONL event logs a coding
// agent writes per conversation into an ordered sequence of typed Events.
package logevents

import "time"

// Kind enumerates the recognized event types. An unrecognized wire value
// decodes to KindUnknown rather than failing the line — unknown-kind
// mapping is advisory only, per the format's forward-compatibility
// contract.
type Kind string

const (
	KindUserMessage          Kind = "user-message"
	KindAssistantTurnStart   Kind = "assistant-turn-start"
	KindAssistantTurnEnd     Kind = "assistant-turn-end"
	KindAssistantMessage     Kind = "assistant-message"
	KindToolExecutionStart   Kind = "tool-execution-start"
	KindToolExecutionComplete Kind = "tool-execution-complete"
	KindAbort                Kind = "abort"
	KindSessionStart          Kind = "session-start"
	KindUnknown               Kind = "unknown"
)

var knownKinds = map[string]Kind{
	string(KindUserMessage):           KindUserMessage,
	string(KindAssistantTurnStart):    KindAssistantTurnStart,
	string(KindAssistantTurnEnd):      KindAssistantTurnEnd,
	string(KindAssistantMessage):      KindAssistantMessage,
	string(KindToolExecutionStart):    KindToolExecutionStart,
	string(KindToolExecutionComplete): KindToolExecutionComplete,
	string(KindAbort):                KindAbort,
	string(KindSessionStart):          KindSessionStart,
}

// kindFromWire maps a raw "type" string to a Kind, falling back to
// KindUnknown for anything not in the recognized set (including the
// empty string).
func kindFromWire(s string) Kind {
	if k, ok := knownKinds[s]; ok {
		return k
	}
	return KindUnknown
}

// ToolRequest is a tool invocation named inside an assistant message's
// payload. Only presence/emptiness of these fields matters to the status
// analyzer — no field is required.
type ToolRequest struct {
	ID     string
	Name   string
	Status string
}

// Payload holds the recognized substructure of an event's "data" object.
// All fields are optional; unrecognized JSON fields are ignored during
// decode rather than rejected.
type Payload struct {
	TurnID       string
	Content      string
	ToolRequests []ToolRequest
	ToolCallID   string
	ToolName     string
}

// Event is an immutable record decoded from one JSONL line. Once returned
// from Parse/ParseLine/ParseIncremental it is never mutated.
type Event struct {
	Kind Kind

	// Timestamp is the event's instant, if present. HasTimestamp is false
	// when the wire record omitted it or carried a value that failed to
	// parse under either recognized encoding (ISO-8601 text or
	// milliseconds-since-epoch).
	Timestamp    time.Time
	HasTimestamp bool

	Payload Payload
}

// Package status implements the pure domain rules that classify a
// conversation's current attention state from its event history. Analyze
// has no I/O and no side effects: the same Events always produce the same
// Status.
package status

import (
	"fmt"
	"time"

	"github.com/kylesnowschwartz/copilot-attnwatch/logevents"
)

// Code is the tagged verdict a conversation can carry. Exactly one Code
// applies per Status.
type Code string

const (
	CodeEmpty              Code = "empty"
	CodeProcessing         Code = "processing"
	CodeWaitingForUser     Code = "waiting-for-user"
	CodeWaitingForApproval Code = "waiting-for-approval"
	CodeUserWaiting        Code = "user-waiting"
	CodeReady              Code = "ready"
	CodeUnknown            Code = "unknown"
)

// IsAttentionRequired reports whether this Code is one of the two codes
// that collectively mean "the user's attention is required". Every
// component that needs that set agrees on it by calling this method
// rather than re-enumerating the codes.
func (c Code) IsAttentionRequired() bool {
	return c == CodeWaitingForUser || c == CodeWaitingForApproval
}

// maxLastMessageRunes is the truncation length for Status.LastMessage.
const maxLastMessageRunes = 200

// Status is the analyzer's verdict for one conversation at one point in
// time.
type Status struct {
	Code   Code
	Reason string

	TurnID      string // optional; "" means absent
	LastMessage string // optional; "" means absent, always len(runes) <= 200

	Timestamp    time.Time
	HasTimestamp bool
}

// Analyze maps an ordered Event history to a Status in four steps: session
// scoping, the empty check, pending-approval detection (which takes
// precedence over turn-based classification), and finally turn-based
// classification.
func Analyze(events []logevents.Event) Status {
	if len(events) == 0 {
		return Status{Code: CodeEmpty, Reason: "No events"}
	}

	scoped := scopeToCurrentSession(events)
	if len(scoped) == 0 {
		return Status{Code: CodeEmpty, Reason: "No events in current session"}
	}

	if st, ok := detectPendingApproval(scoped); ok {
		return st
	}

	return classifyByTurn(scoped)
}

// scopeToCurrentSession discards the last session-start and every event
// before it, or returns the list unmodified if no session-start is
// present. A single log file may concatenate multiple agent sessions
// (the process restarts and reuses the file); only the current session's
// events determine status.
func scopeToCurrentSession(events []logevents.Event) []logevents.Event {
	lastStart := -1
	for i, e := range events {
		if e.Kind == logevents.KindSessionStart {
			lastStart = i
		}
	}
	if lastStart == -1 {
		return events
	}
	return events[lastStart+1:]
}

// detectPendingApproval looks for a tool request awaiting approval. If any
// abort event appears anywhere in scoped, approval detection is abandoned
// entirely — the second return value is false and the caller falls
// through to turn-based classification.
func detectPendingApproval(scoped []logevents.Event) (Status, bool) {
	for _, e := range scoped {
		if e.Kind == logevents.KindAbort {
			return Status{}, false
		}
	}

	started := make(map[string]bool)
	completed := make(map[string]bool)
	type startRec struct {
		id   string
		name string
	}
	var starts []startRec

	for _, e := range scoped {
		switch e.Kind {
		case logevents.KindToolExecutionStart:
			id := e.Payload.ToolCallID
			started[id] = true
			starts = append(starts, startRec{id: id, name: e.Payload.ToolName})
		case logevents.KindToolExecutionComplete:
			completed[e.Payload.ToolCallID] = true
		}
	}

	var pendingName string
	foundPending := false
	for i := len(starts) - 1; i >= 0; i-- {
		s := starts[i]
		if started[s.id] && !completed[s.id] {
			pendingName = s.name
			foundPending = true
			break
		}
	}
	if !foundPending {
		return Status{}, false
	}

	reason := "Tool waiting for approval"
	if pendingName != "" {
		reason = fmt.Sprintf("Tool '%s' waiting for approval", pendingName)
	}

	ts, hasTS := lastTimestamp(scoped)
	return Status{
		Code:         CodeWaitingForApproval,
		Reason:       reason,
		Timestamp:    ts,
		HasTimestamp: hasTS,
	}, true
}

// classifyByTurn is the turn-based classification that applies once
// pending-approval detection has ruled itself out.
func classifyByTurn(scoped []logevents.Event) Status {
	u := lastIndexOfKind(scoped, logevents.KindUserMessage)
	e := lastIndexOfKind(scoped, logevents.KindAssistantTurnEnd)
	s := lastIndexOfKind(scoped, logevents.KindAssistantTurnStart)

	switch {
	case s > e:
		start := scoped[s]
		ts, hasTS := start.Timestamp, start.HasTimestamp
		return Status{
			Code:         CodeProcessing,
			Reason:       "Agent is processing the current turn",
			TurnID:       start.Payload.TurnID,
			Timestamp:    ts,
			HasTimestamp: hasTS,
		}

	case e > u || (e >= 0 && u == -1):
		return classifyTurnEnd(scoped, e)

	case u > e:
		msg := scoped[u]
		return Status{
			Code:         CodeUserWaiting,
			Reason:       "User sent a message; agent has not replied",
			Timestamp:    msg.Timestamp,
			HasTimestamp: msg.HasTimestamp,
		}

	default:
		return Status{Code: CodeUnknown, Reason: "Unable to determine state"}
	}
}

// classifyTurnEnd distinguishes waiting-for-user from ready by walking
// backward from the turn-end at index e until it finds either an
// assistant-message or an assistant-turn-start.
func classifyTurnEnd(scoped []logevents.Event, e int) Status {
	ts, hasTS := lastTimestamp(scoped)

	for i := e - 1; i >= 0; i-- {
		switch scoped[i].Kind {
		case logevents.KindAssistantMessage:
			if len(scoped[i].Payload.ToolRequests) == 0 {
				return Status{
					Code:         CodeWaitingForUser,
					Reason:       "Agent completed turn, awaiting user response",
					LastMessage:  truncateRunes(scoped[i].Payload.Content, maxLastMessageRunes),
					Timestamp:    ts,
					HasTimestamp: hasTS,
				}
			}
			// Message carried tool requests: the turn produced tool work,
			// not a final reply awaiting the user.
			return Status{Code: CodeReady, Reason: "Agent finished a tool-using turn with no final reply", Timestamp: ts, HasTimestamp: hasTS}

		case logevents.KindAssistantTurnStart:
			// No assistant-message between this turn-start and the turn-end.
			return Status{Code: CodeReady, Reason: "Turn ended with no assistant reply", Timestamp: ts, HasTimestamp: hasTS}
		}
	}

	// No assistant-message and no assistant-turn-start found before e:
	// a lone assistant-turn-end with nothing preceding it.
	return Status{Code: CodeReady, Reason: "Turn ended with no assistant reply", Timestamp: ts, HasTimestamp: hasTS}
}

func lastIndexOfKind(events []logevents.Event, k logevents.Kind) int {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == k {
			return i
		}
	}
	return -1
}

func lastTimestamp(events []logevents.Event) (time.Time, bool) {
	last := events[len(events)-1]
	return last.Timestamp, last.HasTimestamp
}

// truncateRunes truncates s to at most n runes, the 200-rune cap applied
// to LastMessage.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

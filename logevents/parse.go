package logevents

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
)

const (
	// lineBufSize is the starting buffer capacity for the scanning reader.
	lineBufSize = 64 * 1024

	// maxLineSize is the maximum tolerated line length. A line longer than
	// this is discarded rather than decoded -- events.jsonl is appended to
	// concurrently by the agent process, and a pathologically long line
	// should not poison the rest of the stream.
	maxLineSize = 64 * 1024 * 1024
)

// ParseLine decodes a single JSONL line into an Event. Returns false if
// the line is not valid JSON — callers must skip it silently, never treat
// it as fatal, since a log file may be read mid-write by its producer.
func ParseLine(line []byte) (Event, bool) {
	var r rawEvent
	if err := json.Unmarshal(line, &r); err != nil {
		return Event{}, false
	}
	return r.decode(), true
}

// Parse decodes a whole text blob of newline-delimited JSON records into
// an ordered list of Events. Malformed lines are skipped, not errored — a
// partial trailing line from a concurrently-appending writer is expected,
// not exceptional.
func Parse(data []byte) []Event {
	events, _, _ := decodeStream(bytes.NewReader(bytes.TrimSpace(data)))
	return events
}

// ParseFile reads the entire file at path as UTF-8 and delegates to Parse.
// Unlike per-line decode failures, I/O failures opening or reading the
// file propagate to the caller.
func ParseFile(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data), nil
}

// ParseIncremental reads new lines appended to the file at path since the
// given byte offset, returning the newly classified Events and the
// updated offset. This is the building block for live tailing: the
// caller accumulates Events across calls and keeps the returned offset
// for the next read. Only I/O failures are returned as errors; decode
// failures on individual lines are swallowed.
func ParseIncremental(path string, offset int64) ([]Event, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, offset, err
	}
	defer f.Close()

	if _, err := f.Seek(offset, 0); err != nil {
		return nil, offset, err
	}

	events, bytesRead, err := decodeStream(f)
	return events, offset + bytesRead, err
}

// decodeStream scans r line by line and decodes each complete line
// directly into an Event, skipping lines that fail to parse as JSON or
// exceed maxLineSize. It returns the Events found, in order, and the
// total number of bytes consumed (including skipped lines and their
// delimiters) so ParseIncremental can resume from an exact byte offset
// on the next call.
func decodeStream(r io.Reader) ([]Event, int64, error) {
	br := bufio.NewReaderSize(r, lineBufSize)

	var events []Event
	var bytesRead int64
	var buf []byte
	oversized := false

	finishLine := func() {
		if !oversized && len(buf) > 0 {
			if e, ok := ParseLine(buf); ok {
				events = append(events, e)
			}
		}
		buf = buf[:0]
		oversized = false
	}

	for {
		chunk, isPrefix, err := br.ReadLine()
		bytesRead += int64(len(chunk))

		if err != nil {
			if err == io.EOF {
				finishLine()
				return events, bytesRead, nil
			}
			return events, bytesRead, err
		}

		if !isPrefix {
			bytesRead++ // the newline delimiter ReadLine stripped
		}

		if !oversized {
			buf = append(buf, chunk...)
			if len(buf) > maxLineSize {
				oversized = true
				buf = buf[:0]
			}
		}

		if !isPrefix {
			finishLine()
		}
	}
}

// LooksLikeJSONL reports whether data contains at least one line that
// parses as valid JSON. Used by callers deciding whether an unfamiliar
// file is worth treating as an event log at all.
func LooksLikeJSONL(data []byte) bool {
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if json.Valid(line) {
			return true
		}
	}
	return false
}

// Encode serializes an Event back into the wire JSON shape Parse expects,
// one object per line without a trailing newline. Used by the round-trip
// property tests and by the demo host's debug dump.
func Encode(e Event) ([]byte, error) {
	r := rawEvent{
		Type:      string(e.Kind),
		Timestamp: encodeTimestamp(e.Timestamp, e.HasTimestamp),
	}
	if hasPayload(e.Payload) {
		d := &rawData{
			TurnID:     e.Payload.TurnID,
			Content:    e.Payload.Content,
			ToolCallID: e.Payload.ToolCallID,
			ToolName:   e.Payload.ToolName,
		}
		if len(e.Payload.ToolRequests) > 0 {
			reqs := make([]rawToolRequest, len(e.Payload.ToolRequests))
			for i, tr := range e.Payload.ToolRequests {
				reqs[i] = rawToolRequest{ToolCallID: tr.ID, ToolName: tr.Name, Status: tr.Status}
			}
			d.ToolRequests = reqs
		}
		r.Data = d
	}
	return json.Marshal(r)
}

func hasPayload(p Payload) bool {
	return p.TurnID != "" || p.Content != "" || len(p.ToolRequests) > 0 ||
		p.ToolCallID != "" || p.ToolName != ""
}

// Package source discovers and parses Claude Code JSONL transcript files.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/theirongolddev/cclock/internal/model"
)

// Byte patterns for field extraction.
var (
	patTimestamp1 = []byte(`"timestamp":"`)
	patTimestamp2 = []byte(`"timestamp": "`)
	patCwd1       = []byte(`"cwd":"`)
	patCwd2       = []byte(`"cwd": "`)
)

// ParseResult holds the output of parsing a single JSONL file.
type ParseResult struct {
	Events      []Event
	ParseErrors int
	Err         error
}

// ParseFile reads a JSONL transcript and extracts its activity events in
// line order. Only lines whose top-level "type" is "user" or "assistant"
// and which carry a parseable top-level timestamp become events; anything
// else (queue operations, file-history snapshots, malformed lines) is
// skipped.
//
// Entry routing by top-level "type" field:
//   - "user"      → byte-level extraction (timestamp, cwd)
//   - "assistant" → full JSON parse (timestamp, cwd, token usage)
//   - everything else → skip
func ParseFile(path string) ParseResult {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var (
		events      []Event
		parseErrors int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 2*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()

		entryType := extractTopLevelType(line)
		if entryType == "" {
			continue
		}

		switch entryType {
		case "user":
			ts, ok := extractTimestampBytes(line)
			if !ok {
				continue
			}
			events = append(events, Event{
				Timestamp: ts,
				Role:      "user",
				Cwd:       extractCwdBytes(line),
			})

		case "assistant":
			var entry RawEntry
			if err := json.Unmarshal(line, &entry); err != nil {
				parseErrors++
				continue
			}
			if entry.Timestamp == "" {
				continue
			}
			ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
			if err != nil {
				continue
			}

			ev := Event{
				Timestamp: ts,
				Role:      "assistant",
				Cwd:       entry.Cwd,
			}
			if entry.Message != nil && entry.Message.Usage != nil {
				u := entry.Message.Usage
				ev.Usage = model.TokenUsage{
					InputTokens:         u.InputTokens,
					OutputTokens:        u.OutputTokens,
					CacheCreationTokens: u.CacheCreationInputTokens,
					CacheReadTokens:     u.CacheReadInputTokens,
				}
			}
			events = append(events, ev)
		}
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}

	return ParseResult{
		Events:      events,
		ParseErrors: parseErrors,
	}
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "type" keys are ignored.
// Early-exits once found, making cost O(1) vs line length.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyType(line, i+len(typeKey))
				if isKey {
					return val // found the "type" key — done regardless of value
				}
				// "type" appeared as a value, not a key. Continue scanning.
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// Returns the type value and whether this was a valid key:value pair.
// isKey=false means "type" appeared as a value, not a key — caller should continue.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false // no colon — this was a value, not a key
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true // key with non-string value (null, number, etc.)
	}
	i++ // past opening quote

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	v := string(line[i : i+end])
	switch v {
	case "user", "assistant":
		return v, true
	}
	return "", true // valid key but irrelevant type (e.g., "queue-operation")
}

// skipJSONString advances past a JSON string starting at the opening quote.
func skipJSONString(line []byte, i int) int {
	i++ // skip opening quote
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}

// extractTimestampBytes extracts the top-level timestamp field via byte scanning.
func extractTimestampBytes(line []byte) (time.Time, bool) {
	for _, pat := range [][]byte{patTimestamp1, patTimestamp2} {
		idx := bytes.Index(line, pat)
		if idx < 0 {
			continue
		}
		start := idx + len(pat)
		end := bytes.IndexByte(line[start:], '"')
		if end < 0 || end > 40 {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, string(line[start:start+end]))
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	}
	return time.Time{}, false
}

// extractCwdBytes extracts the cwd field via byte scanning.
func extractCwdBytes(line []byte) string {
	for _, pat := range [][]byte{patCwd1, patCwd2} {
		idx := bytes.Index(line, pat)
		if idx < 0 {
			continue
		}
		start := idx + len(pat)
		end := bytes.IndexByte(line[start:], '"')
		if end < 0 || end > 1024 {
			continue
		}
		return string(line[start : start+end])
	}
	return ""
}

package source

import (
	"time"

	"github.com/theirongolddev/cclock/internal/model"
)

// Event is a single timestamped activity record extracted from a
// transcript line. Events keep file order, which is append order.
type Event struct {
	Timestamp time.Time
	Role      string // "user" or "assistant"
	Cwd       string
	Usage     model.TokenUsage // zero for user events and assistants without usage
}

// RawEntry represents a single line in a Claude Code JSONL transcript.
type RawEntry struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	Cwd       string      `json:"cwd,omitempty"`
	Message   *RawMessage `json:"message,omitempty"`
}

// RawMessage represents the assistant's message envelope.
type RawMessage struct {
	Role  string    `json:"role"`
	Usage *RawUsage `json:"usage,omitempty"`
}

// RawUsage holds token counts from the API response.
type RawUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

// DiscoveredFile represents a JSONL transcript found during scanning.
type DiscoveredFile struct {
	Path    string // absolute path
	RelPath string // relative to the projects dir; the session identity
}

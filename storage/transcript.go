package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"companion/history"
)

// Transcript is the export format for one session.
type Transcript struct {
	SessionID  string           `json:"session_id"`
	Model      string           `json:"model,omitempty"`
	ExportedAt time.Time        `json:"exported_at"`
	Turns      []history.Turn   `json:"turns"`
	Archive    []history.Record `json:"archive"`
}

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-",
		"<", "-", ">", "-", "|", "-", " ", "-", "\n", "-", "\r", "-",
	)
	name = replacer.Replace(name)

	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}

	if name == "" {
		name = "session"
	}

	return name
}

// GenerateExportPath builds a timestamped export file path under dir.
func GenerateExportPath(dir, sessionID string) string {
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("companion-%s-%s.json", SanitizeFilename(sessionID), timestamp)
	return filepath.Join(dir, filename)
}

// ExportTranscript writes t as indented JSON to path.
func ExportTranscript(path string, t Transcript) error {
	if t.ExportedAt.IsZero() {
		t.ExportedAt = time.Now()
	}
	if t.Turns == nil {
		t.Turns = []history.Turn{}
	}
	if t.Archive == nil {
		t.Archive = []history.Record{}
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	// Ensure directory exists (0700 - user-only access)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Transcripts contain conversation history
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// LoadTranscript reads a transcript written by ExportTranscript.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	return &t, nil
}

package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/nixster/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
		wantMetadata []map[string]any
	}{
		{
			name:         "standard error",
			err:          errors.New("exit status 1"),
			wantMessages: []string{"exit status 1"},
			wantMetadata: []map[string]any{nil},
		},
		{
			name:         "sentinel",
			err:          zerr.New("environment not found"),
			wantMessages: []string{"environment not found"},
			wantMetadata: []map[string]any{{}},
		},
		{
			name:         "wrapped chain",
			err:          zerr.Wrap(zerr.Wrap(errors.New("exit status 1"), "install packages"), "build science"),
			wantMessages: []string{"build science", "install packages", "exit status 1"},
			wantMetadata: []map[string]any{{}, {}, nil},
		},
		{
			name:         "metadata on a standard error moves to it",
			err:          zerr.With(errors.New("exit status 1"), "command", "nix-env"),
			wantMessages: []string{"exit status 1"},
			wantMetadata: []map[string]any{{"command": "nix-env"}},
		},
		{
			name:         "nil error",
			err:          nil,
			wantMessages: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntriesExported(tt.err)

			if tt.err == nil {
				assert.Empty(t, entries)
				return
			}

			assert.Len(t, entries, len(tt.wantMessages))
			for i, wantMsg := range tt.wantMessages {
				assert.Equal(t, wantMsg, entries[i].Message, "message mismatch at index %d", i)
				assert.Equal(t, tt.wantMetadata[i], entries[i].Metadata, "metadata mismatch at index %d", i)
			}
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single entry",
			entries: []logger.ErrorEntry{{Message: "unknown platform"}},
			want:    "Error: unknown platform",
		},
		{
			name:    "three entries",
			entries: []logger.ErrorEntry{{Message: "build science"}, {Message: "install packages"}, {Message: "command failed"}},
			want:    "Error: build science\n\n  Caused by:\n    → install packages\n    → command failed",
		},
		{
			name: "metadata sorted alphabetically",
			entries: []logger.ErrorEntry{{
				Message:  "command failed",
				Metadata: map[string]any{"exit_code": 1, "command": "nix-env"},
			}},
			want: "Error: command failed\n       command: nix-env\n       exit_code: 1",
		},
		{
			name: "multiline cause and metadata",
			entries: []logger.ErrorEntry{
				{Message: "update channel"},
				{Message: "command failed\nnix-env exited", Metadata: map[string]any{"stderr": "error: a\nerror: b"}},
			},
			want: "Error: update channel\n\n  Caused by:\n    → command failed\n      nix-env exited\n      stderr: error: a\n        error: b",
		},
		{
			name:    "empty entries",
			entries: []logger.ErrorEntry{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntriesExported(tt.entries))
		})
	}
}

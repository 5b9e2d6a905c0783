package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/nixster/internal/adapters/logger"
)

func TestLineWriter(t *testing.T) {
	var lines []string
	w := logger.NewLineWriter(func(line string) {
		lines = append(lines, line)
	})

	_, _ = w.Write([]byte("installing 'r-base-3.5.1'\nbuilding"))
	assert.Equal(t, []string{"installing 'r-base-3.5.1'"}, lines)

	_, _ = w.Write([]byte(" path\r\n\n"))
	assert.Equal(t, []string{"installing 'r-base-3.5.1'", "building path"}, lines)

	_, _ = w.Write([]byte("tail"))
	w.Flush()
	assert.Equal(t, []string{"installing 'r-base-3.5.1'", "building path", "tail"}, lines)
}

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("writes a daily file", func(t *testing.T) {
		dir := t.TempDir()

		log, err := New("info", dir)
		require.NoError(t, err)
		log.Info("hello")
		_ = log.Sync()

		data, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))))
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	})

	t.Run("debug uses the development config", func(t *testing.T) {
		log, err := New("debug", "")
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(-1))
	})

	t.Run("rejects unknown levels", func(t *testing.T) {
		_, err := New("loud", "")
		assert.Error(t, err)
	})
}

package mosaic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).WithScan("scan-1")
	ctx := context.Background()

	logger.LogCatalog(ctx, "thumbs", 3, 2, 0, nil)
	logger.LogTile(ctx, 60, 30, 2, time.Millisecond, errors.New("boom"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "catalog completed", first["msg"])
	assert.Equal(t, "scan-1", first["scan_id"])
	assert.EqualValues(t, 2, first["colors"])

	var second map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "ERROR", second["level"])
	assert.Equal(t, "boom", second["error"])
}

func TestNoopLogger(t *testing.T) {
	logger := NoopLogger()
	assert.NotPanics(t, func() {
		logger.LogSkip(context.Background(), "x.png", errors.New("bad"))
	})
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCtx(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithCtx(context.Background(), l)
	FromCtx(ctx).Info("hello", "order_id", "o-1")

	require.Contains(t, buf.String(), `"order_id":"o-1"`)
}

func TestFromCtxFallback(t *testing.T) {
	assert.NotNil(t, FromCtx(context.Background()))
	assert.NotNil(t, New("checkout"))
}

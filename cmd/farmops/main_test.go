package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	listenErr := errors.New("address already in use")

	t.Run("stop error is logged", func(t *testing.T) {
		buf.Reset()
		stopped := false
		err := serverFailure(listenErr, func(context.Context) error {
			stopped = true
			return errors.New("kafka writer closed")
		})

		assert.ErrorIs(t, err, listenErr)
		assert.True(t, stopped)
		assert.Contains(t, buf.String(), "failed to stop recalculation workers")
		assert.Contains(t, buf.String(), "kafka writer closed")
	})

	t.Run("clean stop logs nothing", func(t *testing.T) {
		buf.Reset()
		err := serverFailure(listenErr, func(context.Context) error { return nil })

		assert.ErrorIs(t, err, listenErr)
		assert.Empty(t, buf.String())
	})
}

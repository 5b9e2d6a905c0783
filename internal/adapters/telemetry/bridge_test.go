package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/nixster/internal/adapters/telemetry"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/nixster/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestLogBridge_OnEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	var msg string
	logger.EXPECT().Debug(gomock.Any()).Do(func(m string) { msg = m })

	tracer := telemetry.NewOTelTracer(telemetry.NewLogBridge(logger))
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "catalog.refresh", ports.WithAttribute("channel", "nixos-18.09"))
	span.End()

	assert.True(t, strings.HasPrefix(msg, "catalog.refresh took "), msg)
	assert.Contains(t, msg, " channel=nixos-18.09")
	assert.NotContains(t, msg, "error=")
}

func TestLogBridge_OnEnd_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	var msg string
	logger.EXPECT().Debug(gomock.Any()).Do(func(m string) { msg = m })

	tracer := telemetry.NewOTelTracer(telemetry.NewLogBridge(logger))
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "install")
	span.RecordError(errors.New("no package matches"))
	span.End()

	assert.Contains(t, msg, "error=no package matches")
}

func TestLogBridge_NilLogger(t *testing.T) {
	tracer := telemetry.NewOTelTracer(telemetry.NewLogBridge(nil))
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "noop")
	assert.NotPanics(t, span.End)
}

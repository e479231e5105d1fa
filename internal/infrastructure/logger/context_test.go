package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAndFromContext(t *testing.T) {
	log := zap.NewNop()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	log := FromContext(context.Background())
	assert.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("ignored") })
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, enriched := WithRequestID(context.Background(), zap.New(core), "req-42")

	assert.Equal(t, "req-42", GetRequestID(ctx))

	enriched.Info("hello")
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
}

func TestWithCompanyID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, enriched := WithCompanyID(context.Background(), zap.New(core), "c0ffee")

	assert.Equal(t, "c0ffee", GetCompanyID(ctx))

	enriched.Info("hello")
	assert.Equal(t, "c0ffee", logs.All()[0].ContextMap()["company_id"])
}

func TestChainedEnrichment(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, log := WithRequestID(context.Background(), zap.New(core), "req-1")
	ctx, log = WithCompanyID(ctx, log, "acme")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "acme", GetCompanyID(ctx))
	assert.Same(t, log, FromContext(ctx))

	log.Info("chained")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "acme", fields["company_id"])
}

func TestGetters_Missing(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetCompanyID(ctx))
}

func TestGetters_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDKey, 123)
	assert.Empty(t, GetRequestID(ctx))
}

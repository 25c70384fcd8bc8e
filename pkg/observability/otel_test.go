package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestStartSpanNoProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "protocheck.test", attribute.Int("files", 2))
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)

	assert.NotPanics(t, func() {
		EndSpan(span, errors.New("boom"))
	})
}

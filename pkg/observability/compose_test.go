package observability_test

import (
	"testing"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/fake"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/noop"
	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	fakes := fake.NewProvider()
	noops := noop.NewProvider()

	obs := observability.Compose(fakes.Tracer(), noops.Logger(), fakes.Metrics())

	assert.Same(t, fakes.FakeTracer(), obs.Tracer())
	assert.Equal(t, noops.Logger(), obs.Logger())
	assert.Same(t, fakes.FakeMetrics(), obs.Metrics())
}

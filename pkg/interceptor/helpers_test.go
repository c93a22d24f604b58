package interceptor_test

import (
	"context"
	"testing"

	"github.com/JailtonJunior94/devkit-tracing/pkg/interceptor"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/JailtonJunior94/devkit-tracing/pkg/observability/fake"
	"github.com/stretchr/testify/require"
)

func newInterceptor(t *testing.T, opts ...interceptor.Option) (*interceptor.Interceptor, *fake.Provider) {
	t.Helper()
	provider := fake.NewProvider()
	return interceptor.New(provider, opts...), provider
}

// withParent starts an ambient span outside the interceptor.
func withParent(t *testing.T, provider *fake.Provider) (context.Context, *fake.FakeSpan) {
	t.Helper()
	ctx, span := provider.Tracer().Start(context.Background(), "parent")
	parent, ok := span.(*fake.FakeSpan)
	require.True(t, ok)
	return ctx, parent
}

func onlySpan(t *testing.T, provider *fake.Provider, name string) *fake.FakeSpan {
	t.Helper()
	var found []*fake.FakeSpan
	for _, span := range provider.FakeTracer().GetSpans() {
		if span.Name == name {
			found = append(found, span)
		}
	}
	require.Len(t, found, 1, "spans named %s", name)
	return found[0]
}

func declineAll(provider *fake.Provider) {
	provider.FakeTracer().SetShouldStart(func(context.Context, observability.Operation) bool { return false })
}

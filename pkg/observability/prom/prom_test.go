package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/strata/pkg/observability"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	ctx := context.Background()

	m.OnWorkflowComplete(ctx, "backtrack", "w", 3, time.Second, nil)
	m.OnWorkflowComplete(ctx, "backtrack", "w", 0, time.Second, errors.New("boom"))
	m.OnWarning(ctx, "backtrack", "INACCURATE_BETA", 0.2)
	m.OnCacheHit(ctx, "sample")
	m.OnCacheMiss(ctx, "sample")
	m.OnCacheSet(ctx, "sample", 80)
	m.OnSample(ctx, "age", 10, time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.workflows.WithLabelValues("backtrack", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workflows.WithLabelValues("backtrack", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.warnings.WithLabelValues("backtrack", "INACCURATE_BETA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheEvents.WithLabelValues("sample", "hit")))
	assert.Equal(t, 80.0, testutil.ToFloat64(m.cacheBytes.WithLabelValues("sample")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.samples.WithLabelValues("age", "ok")))

	_, err = New(reg)
	assert.Error(t, err, "registering twice fails")
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.Install()
	assert.Same(t, m, observability.Workflow())
	assert.Same(t, m, observability.Cache())
	assert.Same(t, m, observability.Sampler())
}

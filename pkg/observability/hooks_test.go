package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	w := NoopWorkflowHooks{}
	w.OnWorkflowStart(ctx, "backtrack", "DSDP-36-327")
	w.OnWorkflowComplete(ctx, "backtrack", "DSDP-36-327", 12, time.Second, nil)
	w.OnWarning(ctx, "backtrack", "INACCURATE_BETA", 0.5)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "sample")
	c.OnCacheMiss(ctx, "sample")
	c.OnCacheSet(ctx, "sample", 1024)

	s := NoopSamplerHooks{}
	s.OnSample(ctx, "age", 100, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Workflow().(NoopWorkflowHooks); !ok {
		t.Error("Workflow() should return NoopWorkflowHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Sampler().(NoopSamplerHooks); !ok {
		t.Error("Sampler() should return NoopSamplerHooks by default")
	}

	customWorkflow := &testWorkflowHooks{}
	SetWorkflowHooks(customWorkflow)
	if Workflow() != customWorkflow {
		t.Error("SetWorkflowHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customSampler := &testSamplerHooks{}
	SetSamplerHooks(customSampler)
	if Sampler() != customSampler {
		t.Error("SetSamplerHooks should set custom hooks")
	}

	Reset()
	if _, ok := Workflow().(NoopWorkflowHooks); !ok {
		t.Error("Reset() should restore NoopWorkflowHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testWorkflowHooks{}
	SetWorkflowHooks(custom)
	SetWorkflowHooks(nil)

	if Workflow() != custom {
		t.Error("SetWorkflowHooks(nil) should be ignored")
	}
}

type testWorkflowHooks struct{ NoopWorkflowHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testSamplerHooks struct{ NoopSamplerHooks }

// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through small hook interfaces; the binary decides
// what receives them. The defaults are no-ops, so the numeric packages and
// workflows run unchanged when nothing is registered.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetWorkflowHooks(prom.NewWorkflowHooks(reg))
//	    observability.SetCacheHooks(prom.NewCacheHooks(reg))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Workflow().OnWorkflowStart(ctx, "backtrack", well)
//	// ... decompact, model subsidence ...
//	observability.Workflow().OnWorkflowComplete(ctx, "backtrack", well, n, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Workflow Hooks
// =============================================================================

// WorkflowHooks receives events from the backtrack, backstrip and
// paleobathymetry workflows.
type WorkflowHooks interface {
	OnWorkflowStart(ctx context.Context, workflow, well string)
	OnWorkflowComplete(ctx context.Context, workflow, well string, records int, duration time.Duration, err error)

	// OnWarning records a non-fatal numeric warning (code such as
	// NOT_CONVERGED) together with its residual.
	OnWarning(ctx context.Context, workflow, code string, residual float64)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Sampler Hooks
// =============================================================================

// SamplerHooks receives events from grid sampling, which may be an
// out-of-process call per batch of points.
type SamplerHooks interface {
	OnSample(ctx context.Context, ref string, points int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopWorkflowHooks is a no-op implementation of WorkflowHooks.
type NoopWorkflowHooks struct{}

func (NoopWorkflowHooks) OnWorkflowStart(context.Context, string, string) {}
func (NoopWorkflowHooks) OnWorkflowComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopWorkflowHooks) OnWarning(context.Context, string, string, float64) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSamplerHooks is a no-op implementation of SamplerHooks.
type NoopSamplerHooks struct{}

func (NoopSamplerHooks) OnSample(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	workflowHooks WorkflowHooks = NoopWorkflowHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	samplerHooks  SamplerHooks  = NoopSamplerHooks{}
	hooksMu       sync.RWMutex
)

// SetWorkflowHooks registers custom workflow hooks. Nil is ignored.
func SetWorkflowHooks(h WorkflowHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		workflowHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSamplerHooks registers custom sampler hooks. Nil is ignored.
func SetSamplerHooks(h SamplerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		samplerHooks = h
	}
}

// Workflow returns the registered workflow hooks.
func Workflow() WorkflowHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return workflowHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Sampler returns the registered sampler hooks.
func Sampler() SamplerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return samplerHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	workflowHooks = NoopWorkflowHooks{}
	cacheHooks = NoopCacheHooks{}
	samplerHooks = NoopSamplerHooks{}
}

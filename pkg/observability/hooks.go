// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about analysis runs and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAnalyzerHooks(&myAnalyzerHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Analyzer().OnAnalyzeStart(ctx, project, fileCount)
//	// ... run analysis ...
//	observability.Analyzer().OnAnalyzeComplete(ctx, project, artifactCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Analyzer Hooks
// =============================================================================

// AnalyzerHooks receives events from the analysis pipeline.
type AnalyzerHooks interface {
	// OnAnalyzeStart records the beginning of an analysis run.
	OnAnalyzeStart(ctx context.Context, project string, fileCount int)

	// OnAnalyzeComplete records the end of an analysis run.
	OnAnalyzeComplete(ctx context.Context, project string, artifactCount int, duration time.Duration, err error)

	// OnLayoutStart records the beginning of a layout computation.
	OnLayoutStart(ctx context.Context, artifactCount int)

	// OnLayoutComplete records the end of a layout computation.
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)
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
// No-op Implementations
// =============================================================================

// NoopAnalyzerHooks is a no-op implementation of AnalyzerHooks.
type NoopAnalyzerHooks struct{}

func (NoopAnalyzerHooks) OnAnalyzeStart(context.Context, string, int) {}
func (NoopAnalyzerHooks) OnAnalyzeComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopAnalyzerHooks) OnLayoutStart(context.Context, int)                     {}
func (NoopAnalyzerHooks) OnLayoutComplete(context.Context, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	analyzerHooks AnalyzerHooks = NoopAnalyzerHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalyzerHooks registers custom analyzer hooks.
// This should be called once at application startup before any analysis.
func SetAnalyzerHooks(h AnalyzerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analyzerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Analyzer returns the registered analyzer hooks.
func Analyzer() AnalyzerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analyzerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores the no-op defaults. Intended for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analyzerHooks = NoopAnalyzerHooks{}
	cacheHooks = NoopCacheHooks{}
}

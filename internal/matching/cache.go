package matching

import "sync"

// FitFunc produces a pipeline on demand.
type FitFunc func() (*Pipeline, *Metrics, error)

// Cache memoizes the fitted pipeline for the lifetime of a session. Fitting
// is the only expensive step in the system, so the first successful fit is
// reused by every subsequent scoring call; repeated GetOrFit calls are
// idempotent no-ops while a pipeline is held. Failed fits are not cached so
// a later call with better data can succeed.
type Cache struct {
	mu       sync.Mutex
	pipeline *Pipeline
	metrics  *Metrics
}

// GetOrFit returns the cached pipeline, fitting one with fit on first use.
func (c *Cache) GetOrFit(fit FitFunc) (*Pipeline, *Metrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pipeline != nil {
		return c.pipeline, c.metrics, nil
	}

	pipeline, metrics, err := fit()
	if err != nil {
		return nil, nil, err
	}

	c.pipeline = pipeline
	c.metrics = metrics
	return pipeline, metrics, nil
}

// Put seeds the cache with an already-fitted pipeline, e.g. one loaded from
// a model artifact.
func (c *Cache) Put(pipeline *Pipeline, metrics *Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pipeline = pipeline
	c.metrics = metrics
}

// Invalidate drops the cached pipeline so the next GetOrFit refits.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pipeline = nil
	c.metrics = nil
}

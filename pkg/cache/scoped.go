package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several datasets (for
// example two versions of the same grid collection) can share one backend
// without their entries colliding.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "dataset:2024:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SampleKey generates a prefixed key for grid sample caching.
func (k *ScopedKeyer) SampleKey(ref, pointsHash string) string {
	return k.prefix + k.inner.SampleKey(ref, pointsHash)
}

package cache

// ScopedKeyer wraps a Keyer with a prefix so concurrent runs or separate
// datasets sharing one backend get isolated namespaces.
//
// Example usage:
//
//	// Keys private to one dataset
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "dataset:line4:")
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

// SceneKey generates a prefixed scene key.
func (k *ScopedKeyer) SceneKey(source string, data []byte) string {
	return k.prefix + k.inner.SceneKey(source, data)
}

// FrameKey generates a prefixed frame key.
func (k *ScopedKeyer) FrameKey(sceneHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(sceneHash, opts)
}

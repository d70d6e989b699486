package cache

// ScopedKeyer prefixes every key of an inner Keyer. Preview servers sharing
// one redis instance use it to keep their entries apart:
//
//	keyer := cache.NewScopedKeyer(nil, "netmap:lab-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(sceneHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(sceneHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(positionsHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(positionsHash, opts)
}

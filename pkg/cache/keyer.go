package cache

// FrameKeyOpts are the render options that change a frame artifact.
type FrameKeyOpts struct {
	Format    string `json:"format"`
	Size      int    `json:"size"`
	Invalid   bool   `json:"invalid,omitempty"`
	NoRings   bool   `json:"no_rings,omitempty"`
	ImageHash string `json:"image_hash,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// FrameKey returns the key of a rendered frame. stateHash identifies
	// the drawable state, e.g. Hash of its JSON encoding.
	FrameKey(stateHash string, opts FrameKeyOpts) string
}

// DefaultKeyer produces keys of the form "frame:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) FrameKey(stateHash string, opts FrameKeyOpts) string {
	return hashKey("frame", stateHash, opts)
}

// ScopedKeyer prefixes every key, so several frontends can share one
// backend without sharing entries.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with a prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) FrameKey(stateHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(stateHash, opts)
}

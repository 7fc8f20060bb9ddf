//go:build tsync_cachelinesize_256

package opt

// CacheLineSize_ is forced to 256 bytes via the tsync_cachelinesize_256 build tag.
const CacheLineSize_ = 256

//go:build tsync_noassert

package opt

// Assert_ is off: contract violations are unchecked and undefined.
const Assert_ = false

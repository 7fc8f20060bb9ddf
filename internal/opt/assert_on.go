//go:build !tsync_noassert

package opt

// Assert_ enables caller-contract checks (unlock of a free lock, destroy of
// a held lock or raised gate, barrier misuse). Violations are fatal.
// Disable with: go build -tags=tsync_noassert
const Assert_ = true

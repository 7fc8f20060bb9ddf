//go:build tsync_debug

package opt

import (
	"runtime"
	"strconv"
)

// Debug_ enables the advisory last-acquirer side channel on locks.
// Use: go build -tags=tsync_debug
const Debug_ = true

// Caller returns "file:line" of the caller skip frames above Caller.
// The result is diagnostic only.
func Caller(skip int) *string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return nil
	}
	s := file + ":" + strconv.Itoa(line)
	return &s
}

//go:build !statsview

package stats

import "github.com/retroenv/retrogolib/log"

// Launch does nothing, the binary was built without the statsview tag.
func Launch(*log.Logger) {}

// Available returns true if the statistics server can be launched.
func Available() bool {
	return false
}

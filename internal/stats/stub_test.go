//go:build !statsview

package stats

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestUnavailable(t *testing.T) {
	assert.False(t, Available())
	Launch(log.NewTestLogger(t))
}

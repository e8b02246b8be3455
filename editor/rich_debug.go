//go:build debug

package editor

import "github.com/lixenwraith/softkey/core"

// debugCheckConsistency verifies the shadow tail against the real editor.
// Compiled only into debug builds; the comparison costs a full remote fetch,
// so it must never exist in release binaries. This path does not assume the
// connection is owned by the handler goroutine and tolerates a broken fetch
func (rc *RichConnection) debugCheckConsistency() {
	if !rc.cacheValid {
		return
	}
	c, ok := rc.connected()
	if !ok {
		return
	}
	actual, ok := c.TextBeforeCursor(len(rc.before))
	if !ok {
		return
	}
	shadow := decodeUTF16(rc.before)
	if actual != shadow {
		core.Fail("editor shadow diverged: shadow %q, editor %q", shadow, actual)
	}
}

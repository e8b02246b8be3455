//go:build !debug

package editor

// debugCheckConsistency is compiled out of release builds
func (rc *RichConnection) debugCheckConsistency() {}

package parameter

import "time"

// Editor-state shadow cache
const (
	// EditorCacheSize is the maximum number of UTF-16 code units of text
	// kept cached immediately before the cursor
	EditorCacheSize = 1024

	// InvalidCursor marks an unknown or not-yet-reported cursor position
	InvalidCursor = -1

	// SlowPartialReloadWarn is the elapsed-time threshold above which a
	// partial text fetch from the remote editor is logged as slow
	SlowPartialReloadWarn = 200 * time.Millisecond

	// SlowFullReloadWarn is the elapsed-time threshold for a full cache reload
	SlowFullReloadWarn = 1000 * time.Millisecond
)

// Cache-reset retry policy
const (
	// ResetCacheRetryCount is the initial retry budget for reloading the
	// shadow cache while the editor connection is transiently unavailable
	ResetCacheRetryCount = 5

	// ResetCacheRetryInterval is the delay between reload retries
	ResetCacheRetryInterval = 100 * time.Millisecond
)

package parameter

// Input handling limits
const (
	// RecapitalizeMaxLen is the maximum selection span, in UTF-16 code units,
	// eligible for recapitalization. Bounds the cost of fetching and
	// transforming the selected text
	RecapitalizeMaxLen = 100000

	// HandlerQueueSize is the capacity of the session handler's
	// posted-callback queue
	HandlerQueueSize = 64
)

package input

// Host is the embedding keyboard service. Logic delegates the operations
// that live outside the input core
type Host interface {
	// ShowSettings surfaces the settings UI
	ShowSettings()

	// SubtypeSwitched is called after the language-switch key advanced the
	// subtype; the host rebuilds the keyboard layout for it
	SubtypeSwitched()
}

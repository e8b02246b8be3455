package event

// KeyCode identifies a functional (non-text) software key
type KeyCode uint8

const (
	NotAKeyCode          KeyCode = iota // Event is not a functional key
	KeyDelete                           // Backspace
	KeyShift                            // Shift; triggers recapitalization on a selection
	KeyCapsLock                         // Handled by the keyboard layer, no-op here
	KeySymbolShift                      // Symbol page shift, no-op here
	KeyAlphaSymbolSwitch                // Alpha/symbol layout switch, no-op here
	KeySettings                         // Opens the host settings surface
	KeyActionNext                       // Editor "next field" action
	KeyActionPrevious                   // Editor "previous field" action
	KeyLanguageSwitch                   // Advance to the next enabled subtype
	KeyShiftEnter                       // Literal Enter with the shift modifier
	KeyEmoji                            // Reserved, no-op here
)

func (k KeyCode) String() string {
	switch k {
	case NotAKeyCode:
		return "none"
	case KeyDelete:
		return "delete"
	case KeyShift:
		return "shift"
	case KeyCapsLock:
		return "capslock"
	case KeySymbolShift:
		return "symbol-shift"
	case KeyAlphaSymbolSwitch:
		return "alpha-symbol"
	case KeySettings:
		return "settings"
	case KeyActionNext:
		return "action-next"
	case KeyActionPrevious:
		return "action-previous"
	case KeyLanguageSwitch:
		return "language-switch"
	case KeyShiftEnter:
		return "shift-enter"
	case KeyEmoji:
		return "emoji"
	}
	return "invalid"
}

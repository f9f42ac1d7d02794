package app

// Key binding constants used in handleKey.
const (
	KeyQuit       = "q"
	KeyQuitUpper  = "Q"
	KeyCtrlC      = "ctrl+c"
	KeySave       = "s"
	KeySaveUpper  = "S"
	KeyClear      = "c"
	KeyClearUpper = "C"
)

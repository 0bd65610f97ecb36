package tray

// Options controls how the tray icon behaves.
type Options struct {
	Tooltip  string
	OnToggle func() // start or stop dictation
	OnOpen   func() // open the control panel
	OnQuit   func()
}

// Controller lets callers reflect the session state in the menu and stop
// the icon on shutdown.
type Controller interface {
	SetRecording(bool)
	Stop()
}

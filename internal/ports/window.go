package ports

// WindowController is the thin boundary to the windowing layer. The engine
// only ever hides, restores, or terminates; rendering is out of scope.
type WindowController interface {
	Hide()
	Show()
	Quit()
}

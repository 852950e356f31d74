package login

import "net/url"

// PresentationSurface is the host-supplied surface a web-based attempt renders
// on. The core does not care how it is drawn.
type PresentationSurface interface {
	// Present loads the given URL on the surface and shows it.
	Present(u *url.URL) error
	// Dismiss hides the surface.
	Dismiss()
}

// AppDispatcher is the host-supplied gateway for opening external
// applications by URL, used by the native strategy.
type AppDispatcher interface {
	// CanOpen reports whether an installed application handles the URL.
	CanOpen(u *url.URL) bool
	// Open asks the OS to open the URL, reporting whether dispatch succeeded.
	Open(u *url.URL) bool
}

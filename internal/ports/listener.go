package ports

// Listener is a long-running frontend such as the HTTP API or the SMTP
// content filter
type Listener interface {
	// Name identifies the listener in logs
	Name() string

	// Start starts serving in the background
	Start() error

	// Stop stops serving
	Stop() error
}

package reactor

import "errors"

var (
	// ErrClosed is returned by Post, ScheduleTimer, and RegisterFD once
	// the Reactor has fully terminated.
	ErrClosed = errors.New("reactor: closed")

	// ErrAlreadyRunning is returned by Run if called more than once
	// concurrently, or after the Reactor has already run to completion.
	ErrAlreadyRunning = errors.New("reactor: already running")

	// ErrUnknownTimer is returned by CancelTimer for a handle that does
	// not correspond to a pending timer (already fired or canceled).
	ErrUnknownTimer = errors.New("reactor: unknown timer handle")

	// ErrFDOutOfRange is returned by RegisterFD for a negative or
	// unreasonably large file descriptor.
	ErrFDOutOfRange = errors.New("reactor: fd out of range")

	// ErrFDAlreadyRegistered is returned by RegisterFD for an fd that is
	// already being polled.
	ErrFDAlreadyRegistered = errors.New("reactor: fd already registered")

	// ErrFDNotRegistered is returned by UnregisterFD/ModifyFD for an fd
	// that is not currently being polled.
	ErrFDNotRegistered = errors.New("reactor: fd not registered")

	// ErrUnsupportedPlatform is returned by I/O registration on platforms
	// without a native poller (anything but linux/darwin).
	ErrUnsupportedPlatform = errors.New("reactor: I/O polling unsupported on this platform")
)

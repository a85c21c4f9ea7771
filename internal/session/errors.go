package session

import (
	"errors"

	"stationeye/internal/capture"
)

var (
	// ErrCaptureDenied means the camera could not be acquired: permission refused
	// or no device present. The session does not start.
	ErrCaptureDenied = errors.New("capture denied")
	// ErrChannel covers dial failures and unexpected closure of the backend channel.
	// The session stops and releases the camera.
	ErrChannel = errors.New("channel error")
	// ErrDecode marks an inbound message that is not detection data. Non-fatal.
	ErrDecode = errors.New("decode error")
	// ErrEncode marks a frame that could not be grabbed or encoded. Non-fatal.
	ErrEncode = capture.ErrEncode

	ErrSessionActive  = errors.New("session already active")
	ErrSessionStopped = errors.New("session stopped before it opened")
)

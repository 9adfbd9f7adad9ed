package domain

import "errors"

var (
	// ErrInvalidInput wraps rejected merchant input: blank or oversized
	// fields, past schedule times, malformed clip windows.
	ErrInvalidInput = errors.New("invalid input")

	ErrStreamNotFound  = errors.New("stream not found")
	ErrProductNotFound = errors.New("product not found")
	ErrClipNotFound    = errors.New("clip not found")

	// ErrSessionExists signals an attempt to replace an ingest session id
	// that is already set. The linkage is immutable once written.
	ErrSessionExists = errors.New("ingest session already provisioned")

	// ErrUnknownSession signals a webhook event whose session id does not
	// resolve to any stream.
	ErrUnknownSession = errors.New("unknown ingest session")

	// ErrInvalidTransition signals a lifecycle action that is not legal from
	// the stream's current status.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrEncoderNotReady signals a start attempt before the encoder was
	// observed connected with a playback id available (strict flow only).
	ErrEncoderNotReady = errors.New("encoder not connected yet")

	// ErrNoRecording signals a clip request against a stream that has no
	// recorded asset yet.
	ErrNoRecording = errors.New("stream has no recording")
)

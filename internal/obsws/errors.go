// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is returned when the socket is not open or a write fails.
	ErrTransport = errors.New("obsws transport error")

	// ErrProtocolDecode classifies malformed frames. Use errors.Is.
	ErrProtocolDecode = errors.New("obsws protocol decode error")
)

// DecodeError describes a frame that could not be decoded.
type DecodeError struct {
	Size int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %d bytes: %v", ErrProtocolDecode, e.Size, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrProtocolDecode) match any *DecodeError.
func (e *DecodeError) Is(target error) bool { return target == ErrProtocolDecode }

func transportErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransport, fmt.Sprintf(format, args...))
}

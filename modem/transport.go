package modem

import (
	"context"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Transport represents an established, bidirectional byte stream to a GSM modem.
//
// A Transport is assumed to be already connected and ready for use. It provides
// the low-level I/O primitives required to send AT commands and receive responses.
// Typical implementations include serial ports, TCP connections to emulators,
// or in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to a GSM modem.
//
// Dialer abstracts how the modem connection is created (serial port, TCP-based
// emulator, or test double) and is used both during initial construction and
// again by the reconnect loop after a link failure, so a single Dialer must be
// safe to call more than once.
type Dialer interface {
	// Dial creates and returns a connected Transport, respecting ctx's
	// cancellation and deadline.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens a real GSM modem attached to a local serial
// device via go.bug.st/serial.
type SerialDialer struct {
	Device string
	Mode   *serial.Mode
}

// NewSerialDialer builds a SerialDialer at the gateway's standard
// 115200 8N1 configuration.
func NewSerialDialer(device string) *SerialDialer {
	return &SerialDialer{
		Device: device,
		Mode: &serial.Mode{
			BaudRate: 115200,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
	}
}

// Dial opens the serial port. go.bug.st/serial has no context-aware
// open call, so ctx is only checked before attempting the open; a
// hung driver-level open cannot be interrupted.
func (d *SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	port, err := serial.Open(d.Device, d.Mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.Device, err)
	}
	return port, nil
}

package modem

import (
	"context"
	"testing"
)

func TestSerialDialerDialNonexistentDevice(t *testing.T) {
	dialer := NewSerialDialer("/dev/nonexistent-i4e-test")

	transport, err := dialer.Dial(context.Background())
	if err == nil {
		t.Fatal("expected error opening a nonexistent serial device")
	}
	if transport != nil {
		t.Error("expected nil transport on dial failure")
	}
}

func TestSerialDialerDialContextCanceled(t *testing.T) {
	dialer := NewSerialDialer("/dev/nonexistent-i4e-test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport, err := dialer.Dial(ctx)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if transport != nil {
		t.Error("expected nil transport for canceled context")
	}
}

func TestNewSerialDialerDefaultMode(t *testing.T) {
	dialer := NewSerialDialer("/dev/ttyUSB0")
	if dialer.Mode.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", dialer.Mode.BaudRate)
	}
	if dialer.Mode.DataBits != 8 {
		t.Errorf("DataBits = %d, want 8", dialer.Mode.DataBits)
	}
}

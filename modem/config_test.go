package modem_test

import (
	"testing"
	"time"

	"i4.energy/sms-gateway/modem"
)

func TestConfigBuilderErrNoDialer(t *testing.T) {
	_, err := modem.NewConfigBuilder().Build()
	if err != modem.ErrNoDialer {
		t.Errorf("expected ErrNoDialer, got: %v", err)
	}
}

func TestConfigBuilderDefaults(t *testing.T) {
	cfg, err := modem.NewConfigBuilder().
		WithDialer(modem.NewSerialDialer("/dev/ttyUSB0")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cfg.ATTimeout != 10*time.Second {
		t.Errorf("ATTimeout = %v, want 10s", cfg.ATTimeout)
	}
	if cfg.SendTimeout != 120*time.Second {
		t.Errorf("SendTimeout = %v, want 120s", cfg.SendTimeout)
	}
	if cfg.InitTimeout != 30*time.Second {
		t.Errorf("InitTimeout = %v, want 30s", cfg.InitTimeout)
	}
	if cfg.Events == nil {
		t.Error("expected a default event bus")
	}
}

func TestConfigBuilderWithGNSSSetsInterval(t *testing.T) {
	cfg, err := modem.NewConfigBuilder().
		WithDialer(modem.NewSerialDialer("/dev/ttyUSB0")).
		WithGNSS(30 * time.Second).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !cfg.GNSSEnabled {
		t.Error("expected GNSSEnabled")
	}
	if cfg.GNSSReportInterval != 30*time.Second {
		t.Errorf("GNSSReportInterval = %v, want 30s", cfg.GNSSReportInterval)
	}
}

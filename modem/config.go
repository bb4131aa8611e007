package modem

import (
	"time"

	"i4.energy/sms-gateway/eventbus"
)

// requestQueueCapacity bounds the number of AT command requests the
// Modem will hold before submit starts returning ErrModemBusy.
const requestQueueCapacity = 1024

// probeTimeout bounds the harmless "AT" sync command runSession sends
// after a request times out (SPEC_FULL.md §4.4). It is short relative
// to ATTimeout because by this point the modem has already failed to
// answer one command inside its normal deadline.
const probeTimeout = 5 * time.Second

// Config holds everything New needs to bring a Modem up: how to reach
// it, how to authenticate to the SIM, and the timing budgets the
// request state machine and reconnect loop use.
type Config struct {
	Dialer Dialer

	SimPIN          string
	MinSendInterval time.Duration
	MaxRetries      int
	EchoOn          bool
	ATTimeout       time.Duration
	InitTimeout     time.Duration

	// SendTimeout is the deadline applied to AT+CMGS requests, longer
	// than ATTimeout because the network may hold the modem while a
	// segment is being submitted.
	SendTimeout time.Duration

	// GNSSEnabled turns on the optional GNSS init commands
	// (AT+CGNSPWR=1, AT+CGPSRST=0, AT+CGNSURC=<interval>).
	GNSSEnabled        bool
	GNSSReportInterval time.Duration

	// Events is the bus URCs and send outcomes are published to. A
	// caller-supplied bus is required in production; New defaults to a
	// freshly constructed private bus if left nil, so tests that don't
	// care about events can omit it.
	Events *eventbus.Bus

	// Store is consulted for the outgoing-insert-on-ack and
	// delivery-report-recording calls the modem driver makes directly;
	// see MessageSink. Optional.
	Store MessageSink
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.MinSendInterval == 0 {
		c.MinSendInterval = time.Minute / 30
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.ATTimeout == 0 {
		c.ATTimeout = 10 * time.Second
	}
	if c.InitTimeout == 0 {
		c.InitTimeout = 30 * time.Second
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = 120 * time.Second
	}
	if c.GNSSEnabled && c.GNSSReportInterval == 0 {
		c.GNSSReportInterval = 10 * time.Second
	}
	if c.Events == nil {
		c.Events = eventbus.New()
	}
}

// ConfigOption mutates a Config under construction. Errors returned
// from an option abort ConfigBuilder.Build.
type ConfigOption func(*Config) error

// ConfigBuilder accumulates ConfigOptions and produces a validated,
// defaulted Config. It exists so callers (main.go, tests) can build a
// Config incrementally without repeating validation at every call
// site.
type ConfigBuilder struct {
	cfg  Config
	errs []error
}

// NewConfigBuilder starts a new builder with a zero Config.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) apply(opt ConfigOption) *ConfigBuilder {
	if err := opt(&b.cfg); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// WithDialer sets the transport dialer. Required — Build fails
// without one.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	return b.apply(func(c *Config) error {
		c.Dialer = d
		return nil
	})
}

// WithSimPIN sets the SIM PIN submitted during init if the SIM
// reports a locked state.
func (b *ConfigBuilder) WithSimPIN(pin string) *ConfigBuilder {
	return b.apply(func(c *Config) error {
		c.SimPIN = pin
		return nil
	})
}

// WithATTimeout sets the default per-request deadline.
func (b *ConfigBuilder) WithATTimeout(d time.Duration) *ConfigBuilder {
	return b.apply(func(c *Config) error {
		c.ATTimeout = d
		return nil
	})
}

// WithInitTimeout bounds the whole init() sequence run during New.
func (b *ConfigBuilder) WithInitTimeout(d time.Duration) *ConfigBuilder {
	return b.apply(func(c *Config) error {
		c.InitTimeout = d
		return nil
	})
}

// WithSendTimeout overrides the AT+CMGS-specific deadline.
func (b *ConfigBuilder) WithSendTimeout(d time.Duration) *ConfigBuilder {
	return b.apply(func(c *Config) error {
		c.SendTimeout = d
		return nil
	})
}

// WithMaxRetries sets Config.MaxRetries (3 when left at 0). The
// reconnect loop does not read it: a broken link is retried, with
// capped backoff, until the context is cancelled.
func (b *ConfigBuilder) WithMaxRetries(n int) *ConfigBuilder {
	return b.apply(func(c *Config) error {
		c.MaxRetries = n
		return nil
	})
}

// WithMinSendInterval sets the minimum spacing enforced between
// consecutive AT+CMGS submissions, a courtesy to modems that choke on
// back-to-back sends.
func (b *ConfigBuilder) WithMinSendInterval(d time.Duration) *ConfigBuilder {
	return b.apply(func(c *Config) error {
		c.MinSendInterval = d
		return nil
	})
}

// WithGNSS enables the GNSS init commands and sets the URC report
// interval.
func (b *ConfigBuilder) WithGNSS(interval time.Duration) *ConfigBuilder {
	return b.apply(func(c *Config) error {
		c.GNSSEnabled = true
		c.GNSSReportInterval = interval
		return nil
	})
}

// WithEvents sets the bus URCs and send outcomes are published to.
func (b *ConfigBuilder) WithEvents(bus *eventbus.Bus) *ConfigBuilder {
	return b.apply(func(c *Config) error {
		c.Events = bus
		return nil
	})
}

// WithStore sets the message store the modem calls directly for
// outgoing-insert-on-ack and delivery-report recording.
func (b *ConfigBuilder) WithStore(store MessageSink) *ConfigBuilder {
	return b.apply(func(c *Config) error {
		c.Store = store
		return nil
	})
}

// Build validates accumulated options and returns a defaulted Config.
func (b *ConfigBuilder) Build() (Config, error) {
	if len(b.errs) > 0 {
		return Config{}, b.errs[0]
	}
	cfg := b.cfg
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Package webhook delivers eventbus activity to external HTTP
// endpoints: one worker per configured URL, each with its own event
// filter, retry curve, and delivery ordering.
package webhook

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	"i4.energy/sms-gateway/eventbus"
)

// DefaultBacklog bounds how many undelivered events a worker will
// hold before the bus's LagDrop policy starts discarding the oldest.
const DefaultBacklog = 64

// Config describes one webhook subscription.
type Config struct {
	// URL is the endpoint events are POSTed to.
	URL string

	// Secret signs each delivery body with HMAC-SHA256, sent as the
	// X-Signature header. Required — an unsigned webhook is not
	// supported.
	Secret string

	// Events filters which event kinds this webhook receives. An
	// empty slice defaults to IncomingSms only, matching the
	// configuration file's most common use case (forward inbound SMS
	// to an external system).
	Events []eventbus.Kind

	// ExpectedStatus overrides the success check to require this
	// exact status code instead of any 2xx.
	ExpectedStatus int

	// Headers are added to every delivery request verbatim.
	Headers map[string]string

	// RootCAFile, if set, is a PEM file used instead of the system
	// trust store to validate the endpoint's TLS certificate.
	RootCAFile string

	// Backlog bounds the worker's event queue. Defaults to
	// DefaultBacklog.
	Backlog int
}

func (c Config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("webhook: URL is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("webhook: Secret is required")
	}
	return nil
}

func (c Config) filter() []eventbus.Kind {
	if len(c.Events) == 0 {
		return []eventbus.Kind{eventbus.KindIncomingSms}
	}
	return c.Events
}

func (c Config) backlog() int {
	if c.Backlog <= 0 {
		return DefaultBacklog
	}
	return c.Backlog
}

func (c Config) isSuccess(status int) bool {
	if c.ExpectedStatus != 0 {
		return status == c.ExpectedStatus
	}
	return status >= 200 && status < 300
}

// buildClient constructs the HTTP client used for deliveries to this
// webhook, loading a custom root CA when RootCAFile is set.
func (c Config) buildClient() (*http.Client, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	if c.RootCAFile == "" {
		return client, nil
	}

	pem, err := os.ReadFile(c.RootCAFile)
	if err != nil {
		return nil, fmt.Errorf("webhook: read root CA %s: %w", c.RootCAFile, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("webhook: no certificates found in %s", c.RootCAFile)
	}

	client.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: pool},
	}
	return client, nil
}

package modem

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"i4.energy/sms-gateway/at"
)

// init runs the fixed bring-up script against the modem's current
// transport, synchronously and before Loop is started: reset, echo
// off, verbose errors, SIM unlock, PDU mode, character set, new
// message indications, SMS text parameters, preferred storage, and —
// if enabled — GNSS power-up. See SPEC_FULL.md §4.4 for the rationale
// behind this exact ordering.
func (m *Modem) init(ctx context.Context) error {
	if err := m.expectOkDirect(ctx, at.CmdReset, nil); err != nil {
		return fmt.Errorf("reset modem: %w", err)
	}
	if err := m.expectOkDirect(ctx, at.CmdEchoOff, nil); err != nil {
		return fmt.Errorf("disable echo: %w", err)
	}
	if err := m.expectOkDirect(ctx, at.CmdVerboseErrors, nil); err != nil {
		return fmt.Errorf("enable verbose errors: %w", err)
	}

	simStatus, err := m.execDirect(ctx, at.CmdSimStatus, []string{"+CPIN:"})
	if err != nil {
		return fmt.Errorf("query SIM status: %w", err)
	}
	switch {
	case strings.Contains(simStatus, at.SimReady):
	case strings.Contains(simStatus, at.SimPin):
		if m.config.SimPIN == "" {
			return ErrSIMPinRequired
		}
		if err := m.expectOkDirect(ctx, fmt.Sprintf(`AT+CPIN="%s"`, m.config.SimPIN), nil); err != nil {
			return fmt.Errorf("enter SIM PIN: %w", err)
		}
		if err := m.waitForSIMReady(ctx, PollConfig{Interval: time.Second, MaxRetries: 10}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported SIM state: %q", simStatus)
	}

	if err := m.expectOkDirect(ctx, at.CmdPduMode, nil); err != nil {
		return fmt.Errorf("select PDU mode: %w", err)
	}
	if err := m.expectOkDirect(ctx, at.CmdCharsetGSM, nil); err != nil {
		return fmt.Errorf("select GSM charset: %w", err)
	}
	if err := m.expectOkDirect(ctx, at.CmdCNMI, nil); err != nil {
		return fmt.Errorf("configure new message indications: %w", err)
	}
	if err := m.expectOkDirect(ctx, at.CmdSMSParams, nil); err != nil {
		return fmt.Errorf("configure SMS text parameters: %w", err)
	}
	if err := m.expectOkDirect(ctx, at.CmdPreferredStore, nil); err != nil {
		return fmt.Errorf("select preferred storage: %w", err)
	}

	if m.config.GNSSEnabled {
		if err := m.expectOkDirect(ctx, at.CmdGNSSPower, nil); err != nil {
			return fmt.Errorf("power GNSS: %w", err)
		}
		if err := m.expectOkDirect(ctx, at.CmdGNSSReset, nil); err != nil {
			return fmt.Errorf("reset GNSS: %w", err)
		}
		seconds := int(m.config.GNSSReportInterval / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		if err := m.expectOkDirect(ctx, fmt.Sprintf(at.CmdGNSSURCFmt, seconds), nil); err != nil {
			return fmt.Errorf("configure GNSS URC interval: %w", err)
		}
	}

	return nil
}

// waitForSIMReady polls AT+CPIN? until it reports READY or retries
// are exhausted, giving the SIM time to finish unlocking after a PIN
// is submitted.
func (m *Modem) waitForSIMReady(ctx context.Context, poll PollConfig) error {
	if poll.Interval <= 0 {
		poll.Interval = time.Second
	}
	if poll.MaxRetries <= 0 {
		poll.MaxRetries = 10
	}
	for attempt := 0; attempt < poll.MaxRetries; attempt++ {
		status, err := m.execDirect(ctx, at.CmdSimStatus, []string{"+CPIN:"})
		if err == nil && strings.Contains(status, at.SimReady) {
			return nil
		}
		select {
		case <-time.After(poll.Interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("SIM did not report ready after PIN entry")
}

// execDirect writes cmd straight to the current transport and reads
// until a Final response, bypassing the request queue. Used only
// during init, before Loop is reading the transport.
func (m *Modem) execDirect(ctx context.Context, cmd string, expectedPrefixes []string) (string, error) {
	transport := m.getTransport()
	if _, err := transport.Write([]byte(strings.TrimSpace(cmd) + "\r")); err != nil {
		return "", fmt.Errorf("write %q: %w", cmd, err)
	}

	scanner := bufio.NewScanner(transport)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	scanner.Split(at.Splitter)

	pending := &at.PendingCommand{ExpectedPrefixes: expectedPrefixes}
	var lines []string

	tokens := make(chan string)
	scanErrs := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		// The reader stops after handing over the Final line, so it
		// never consumes the response to a later command.
		for scanner.Scan() {
			token := scanner.Text()
			select {
			case tokens <- token:
			case <-done:
				return
			}
			if at.Classify(token, pending) == at.TypeFinal {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			scanErrs <- err
		} else {
			scanErrs <- fmt.Errorf("transport closed while awaiting response to %q", cmd)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case err := <-scanErrs:
			return "", err
		case token := <-tokens:
			switch at.Classify(token, pending) {
			case at.TypeFinal:
				if token == at.OK {
					return strings.Join(lines, "\n"), nil
				}
				return strings.Join(lines, "\n"), parseFinalError(token)
			case at.TypeIntermediate:
				lines = append(lines, token)
			case at.TypeURC, at.TypePrompt:
				// Unsolicited traffic or a stray prompt arriving during
				// init is logged nowhere in particular and simply
				// ignored; Loop is not running yet to route it.
			}
		}
	}
}

// expectOkDirect is execDirect for commands whose only acceptable
// Final response is OK.
func (m *Modem) expectOkDirect(ctx context.Context, cmd string, expectedPrefixes []string) error {
	_, err := m.execDirect(ctx, cmd, expectedPrefixes)
	return err
}

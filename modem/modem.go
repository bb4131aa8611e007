package modem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/sms-gateway/at"
	"i4.energy/sms-gateway/eventbus"
)

// Modem owns the single writer and single reader over a Transport and
// exposes AT command execution as a request/response API safe to call
// from many goroutines. All wire traffic is funneled through Loop,
// the modem's serial execution contract (SPEC_FULL.md §4.4/§5) —
// callers never touch the transport directly.
type Modem struct {
	config Config

	closed      atomic.Bool
	loopRunning atomic.Bool

	transportMu sync.Mutex
	transport   Transport

	requests chan *request

	events     *eventbus.Bus
	store      MessageSink
	pending    *pendingTable
	reassembly *reassembler
	gnss       *gnssCache

	sendMu     sync.Mutex
	lastSendAt time.Time
	refCounter atomic.Uint32
}

// request is one AT command occupying the modem's single execution
// slot. payload, when non-nil, is written after the '>' prompt and
// followed by Ctrl-Z — used only by AT+CMGS.
type request struct {
	cmd              string
	payload          []byte
	expectedPrefixes []string
	ctx              context.Context
	resultCh         chan requestResult
}

type requestResult struct {
	lines []string
	final string
	err   error
}

// PollConfig configures waitForSIMReady's polling loop during init.
type PollConfig struct {
	Interval   time.Duration
	Timeout    time.Duration
	MaxRetries int
}

// New dials the configured transport, runs the fixed init script
// (SPEC_FULL.md §4.4), and returns a Modem ready for Loop to be
// started on. New does not start Loop itself.
func New(ctx context.Context, config Config) (*Modem, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}

	m := &Modem{
		config:     config,
		events:     config.Events,
		store:      config.Store,
		requests:   make(chan *request, requestQueueCapacity),
		pending:    newPendingTable(),
		reassembly: newReassembler(),
		gnss:       newGNSSCache(),
	}
	m.setTransport(transport)

	initCtx := ctx
	if config.InitTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, config.InitTimeout)
		defer cancel()
	}

	if err := m.init(initCtx); err != nil {
		transport.Close()
		return nil, fmt.Errorf("initialize modem: %w", err)
	}

	return m, nil
}

func (m *Modem) setTransport(t Transport) {
	m.transportMu.Lock()
	m.transport = t
	m.transportMu.Unlock()
}

func (m *Modem) getTransport() Transport {
	m.transportMu.Lock()
	defer m.transportMu.Unlock()
	return m.transport
}

// Events returns the bus this modem publishes URCs and send outcomes
// to, for the HTTP/WebSocket adapter and webhook dispatcher to
// subscribe against.
func (m *Modem) Events() *eventbus.Bus {
	return m.events
}

// GNSSFix returns the most recently observed GNSS fix, if any.
func (m *Modem) GNSSFix() (GNSSFix, bool) {
	return m.gnss.Load()
}

// Close shuts down the modem. It closes the current transport, which
// unblocks Loop's blocking read and causes it to return; Loop does
// not attempt to reconnect once Close has been called.
func (m *Modem) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}
	if t := m.getTransport(); t != nil {
		return t.Close()
	}
	return nil
}

// Loop is the modem's event loop: the only goroutine that reads from
// the transport. It must be started exactly once, typically via
// `go modem.Loop(ctx)` from an errgroup, and runs until ctx is
// cancelled or Close is called; a broken link is reopened, never
// abandoned.
//
// On link loss, Loop drains queued requests with ErrLinkLost,
// reconnects with exponential backoff, replays the init script, and
// resumes serving the request queue — all transparent to callers of
// submit/Exec/SendMessage, which simply see their in-flight request
// fail once and later requests succeed again.
func (m *Modem) Loop(ctx context.Context) error {
	if !m.loopRunning.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer m.loopRunning.Store(false)

	transport := m.getTransport()

	for {
		linkErr := m.runSession(ctx, transport)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if m.closed.Load() {
			return nil
		}

		m.failQueued(ErrLinkLost)
		m.events.Publish(eventbus.KindModemLinkState, LinkState{Online: false, Reason: linkErr.Error()})

		newTransport, err := m.reconnect(ctx)
		if err != nil {
			return err
		}
		transport = newTransport
		m.setTransport(transport)
		m.events.Publish(eventbus.KindModemLinkState, LinkState{Online: true})
	}
}

type loopState int

const (
	stateIdle loopState = iota
	stateAwaitingPrompt
	stateAwaitingFinal
)

// runSession drives the request state machine over one transport
// instance until the link dies or ctx is cancelled. It returns the
// error that ended the session; callers should check ctx.Err() first
// to distinguish a clean shutdown from a link failure.
func (m *Modem) runSession(ctx context.Context, transport Transport) error {
	scanner := bufio.NewScanner(transport)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	scanner.Split(at.Splitter)

	tokens := make(chan string, 16)
	scanErrs := make(chan error, 1)

	go func() {
		defer close(tokens)
		for scanner.Scan() {
			select {
			case tokens <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		select {
		case scanErrs <- err:
		case <-ctx.Done():
		}
	}()

	var (
		state   = stateIdle
		current *request
		pending *at.PendingCommand
		lines   []string
		awaitURC func(string)
	)

	finish := func(res requestResult) {
		if current == nil {
			return
		}
		select {
		case current.resultCh <- res:
		default:
		}
		current, pending, lines = nil, nil, nil
		state = stateIdle
	}

	for {
		var currentDone <-chan struct{}
		if current != nil {
			currentDone = current.ctx.Done()
		}
		var requestsChan chan *request
		if state == stateIdle {
			requestsChan = m.requests
		}

		select {
		case <-ctx.Done():
			finish(requestResult{err: ctx.Err()})
			return ctx.Err()

		case req := <-requestsChan:
			current = req
			pending = &at.PendingCommand{ExpectedPrefixes: req.expectedPrefixes}
			lines = nil

			wire := strings.TrimSpace(req.cmd) + "\r"
			if _, err := transport.Write([]byte(wire)); err != nil {
				finish(requestResult{err: fmt.Errorf("write command %q: %w", req.cmd, err)})
				continue
			}
			if req.payload != nil {
				state = stateAwaitingPrompt
			} else {
				state = stateAwaitingFinal
			}

		case <-currentDone:
			finish(requestResult{lines: lines, err: fmt.Errorf("%w: %v", ErrTimeout, current.ctx.Err())})
			if err := m.syncProbe(ctx, transport, tokens); err != nil {
				return fmt.Errorf("%w: sync probe after timeout: %v", ErrLinkLost, err)
			}

		case token, ok := <-tokens:
			if !ok {
				var err error
				select {
				case err = <-scanErrs:
				default:
					err = io.EOF
				}
				finish(requestResult{lines: lines, err: fmt.Errorf("%w: %v", ErrLinkLost, err)})
				return err
			}

			if awaitURC != nil {
				cont := awaitURC
				awaitURC = nil
				cont(token)
				continue
			}

			switch at.Classify(token, pending) {
			case at.TypeURC:
				if cont := m.dispatchURC(token); cont != nil {
					awaitURC = cont
				}

			case at.TypePrompt:
				if state == stateAwaitingPrompt && current != nil {
					wire := append(append([]byte{}, current.payload...), []byte(at.CtrlZ)...)
					if _, err := transport.Write(wire); err != nil {
						finish(requestResult{err: fmt.Errorf("write payload: %w", err)})
						continue
					}
					state = stateAwaitingFinal
				}

			case at.TypeFinal:
				if current == nil {
					continue
				}
				if state == stateAwaitingPrompt {
					finish(requestResult{lines: lines, final: token, err: parseFinalError(token)})
					continue
				}
				if token == at.OK {
					finish(requestResult{lines: lines, final: token})
				} else {
					finish(requestResult{lines: lines, final: token, err: parseFinalError(token)})
				}

			case at.TypeIntermediate:
				if current != nil && state == stateAwaitingFinal {
					lines = append(lines, token)
				}
			}
		}
	}
}

// syncProbe sends a harmless "AT" command after a request timeout to
// tell a genuinely dead link apart from one that merely dropped a
// single response (SPEC_FULL.md §4.4). It returns nil once the modem
// answers OK; any other outcome — a non-OK final, the probe itself
// timing out, a write failure, or the token stream closing — means the
// link is judged dead, and runSession's caller tears the session down
// and reconnects. URCs observed while probing are still dispatched;
// they are unrelated to the probe and must not be dropped.
func (m *Modem) syncProbe(ctx context.Context, transport Transport, tokens <-chan string) error {
	if _, err := transport.Write([]byte(strings.TrimSpace(at.CmdSync) + "\r")); err != nil {
		return fmt.Errorf("write sync probe: %w", err)
	}

	deadline := time.NewTimer(probeTimeout)
	defer deadline.Stop()

	pending := &at.PendingCommand{}
	var awaitURC func(string)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-deadline.C:
			return ErrTimeout

		case token, ok := <-tokens:
			if !ok {
				return ErrLinkLost
			}

			if awaitURC != nil {
				cont := awaitURC
				awaitURC = nil
				cont(token)
				continue
			}

			switch at.Classify(token, pending) {
			case at.TypeURC:
				if cont := m.dispatchURC(token); cont != nil {
					awaitURC = cont
				}
			case at.TypeFinal:
				if token == at.OK {
					return nil
				}
				return parseFinalError(token)
			}
		}
	}
}

// failQueued drains any requests still sitting in the channel buffer
// (not yet picked up by runSession) with err, matching the "drain the
// queue with LinkLost failures" reopen behavior; requests submitted
// after this point are simply held in the channel until Loop resumes
// reading it post-reconnect.
func (m *Modem) failQueued(err error) {
	for {
		select {
		case req := <-m.requests:
			select {
			case req.resultCh <- requestResult{err: err}:
			default:
			}
		default:
			return
		}
	}
}

// reconnect re-dials the transport with capped exponential backoff
// and replays the init script before handing the new transport back
// to Loop.
func (m *Modem) reconnect(ctx context.Context) (Transport, error) {
	if t := m.getTransport(); t != nil {
		t.Close()
	}

	delays := []time.Duration{100 * time.Millisecond, 250 * time.Millisecond, time.Second, 5 * time.Second}
	attempt := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		transport, err := m.config.Dialer.Dial(ctx)
		if err == nil {
			m.setTransport(transport)
			initCtx := ctx
			if m.config.InitTimeout > 0 {
				var cancel context.CancelFunc
				initCtx, cancel = context.WithTimeout(ctx, m.config.InitTimeout)
				err = m.init(initCtx)
				cancel()
			} else {
				err = m.init(initCtx)
			}
			if err == nil {
				return transport, nil
			}
			transport.Close()
		}

		delay := delays[attempt]
		if attempt < len(delays)-1 {
			attempt++
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// parseFinalError converts a Final response line other than OK into a
// typed error, extracting the numeric code from +CME ERROR/+CMS ERROR
// lines where present.
func parseFinalError(token string) error {
	switch {
	case strings.HasPrefix(token, at.CmeError):
		code, _ := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(token, at.CmeError)))
		return &ModemError{Scope: ScopeCME, Code: code, Raw: token}
	case strings.HasPrefix(token, at.CmsError):
		code, _ := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(token, at.CmsError)))
		return &ModemError{Scope: ScopeCMS, Code: code, Raw: token}
	default:
		return errors.New(token)
	}
}

// submit queues an AT command for the loop and waits for its result.
// It is the single choke point every public operation (Exec,
// SendMessage, init's direct helpers excluded) funnels through.
func (m *Modem) submit(ctx context.Context, cmd string, payload []byte, expectedPrefixes []string, timeout time.Duration) (requestResult, error) {
	if m.closed.Load() {
		return requestResult{}, ErrAlreadyClosed
	}

	reqCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		if timeout <= 0 {
			timeout = m.config.ATTimeout
		}
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req := &request{
		cmd:              cmd,
		payload:          payload,
		expectedPrefixes: expectedPrefixes,
		ctx:              reqCtx,
		resultCh:         make(chan requestResult, 1),
	}

	select {
	case m.requests <- req:
	default:
		return requestResult{}, ErrModemBusy
	}

	select {
	case res := <-req.resultCh:
		return res, res.err
	case <-reqCtx.Done():
		return requestResult{}, fmt.Errorf("%w: %v", ErrTimeout, reqCtx.Err())
	}
}

// Exec runs a plain AT command through the loop and returns its
// accumulated intermediate lines joined by newline. expectedPrefixes
// should list the "+XXX:" prefixes this command's own response uses,
// so the classifier does not mistake them for URCs.
func (m *Modem) Exec(ctx context.Context, cmd string, expectedPrefixes []string) (string, error) {
	res, err := m.submit(ctx, cmd, nil, expectedPrefixes, m.config.ATTimeout)
	if err != nil {
		return "", err
	}
	return strings.Join(res.lines, "\n"), nil
}

// RunMaintenance periodically evicts stale pending-reference and
// partial-reassembly entries. Intended to run as one of the
// gateway's top-level errgroup goroutines alongside Loop.
func (m *Modem) RunMaintenance(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			m.pending.evictExpired(now)
			m.reassembly.evictExpired(now)
		}
	}
}

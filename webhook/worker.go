package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aniladanir/retry"
	"github.com/google/uuid"

	"i4.energy/sms-gateway/eventbus"
)

// backoffCurve is the fixed delay before each retry attempt, applied
// before every attempt after the first.
var backoffCurve = []time.Duration{
	time.Second,
	2 * time.Second,
	5 * time.Second,
	15 * time.Second,
	60 * time.Second,
}

const maxAttempts = 5

// worker delivers events from one subscription to one webhook URL,
// sequentially, preserving per-URL delivery order.
type worker struct {
	cfg    Config
	sub    *eventbus.Subscription
	client *http.Client
	logger *slog.Logger
}

// deliveryBody is the JSON payload every webhook POST carries.
type deliveryBody struct {
	EventID uint64      `json:"event_id"`
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

func (w *worker) run(ctx context.Context) error {
	defer w.sub.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.sub.C():
			if !ok {
				return nil
			}
			w.deliver(ctx, ev)
		}
	}
}

// deliver POSTs one event, retrying per the fixed backoff curve on
// network errors and 5xx responses. A retrier from aniladanir/retry
// drives the attempt loop; the delay between attempts follows
// backoffCurve rather than the library's own default spacing, since
// the delivery contract specifies exact values.
func (w *worker) deliver(ctx context.Context, ev eventbus.Event) {
	body, err := json.Marshal(deliveryBody{EventID: ev.ID, Kind: string(ev.Kind), Payload: ev.Payload})
	if err != nil {
		w.logger.Error("failed to marshal event", "event_id", ev.ID, "error", err)
		return
	}
	signature := sign(w.cfg.Secret, body)

	retrier, err := retry.New(retry.WithMaxAttemps(maxAttempts))
	if err != nil {
		w.logger.Error("failed to build retrier", "error", err)
		return
	}

	attempt := 0
	retryFunc := func(int) (terminate bool) {
		if attempt > 0 {
			select {
			case <-time.After(backoffCurve[min(attempt-1, len(backoffCurve)-1)]):
			case <-ctx.Done():
				return true
			}
		}
		attempt++

		status, err := w.post(ctx, body, signature, ev.ID)
		switch {
		case err != nil:
			w.logger.Warn("webhook delivery attempt failed", "event_id", ev.ID, "attempt", attempt, "error", err)
			return false
		case w.cfg.isSuccess(status):
			w.logger.Info("webhook delivered", "event_id", ev.ID, "attempt", attempt, "status", status)
			return true
		case status >= 400 && status < 500:
			w.logger.Warn("webhook rejected, not retrying", "event_id", ev.ID, "status", status)
			return true
		default:
			w.logger.Warn("webhook delivery attempt failed", "event_id", ev.ID, "attempt", attempt, "status", status)
			return false
		}
	}

	if !<-retrier.Retry(ctx, retryFunc, true) {
		w.logger.Error("webhook delivery exhausted retries", "event_id", ev.ID)
	}
}

func (w *worker) post(ctx context.Context, body []byte, signature string, eventID uint64) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", "sha256="+signature)
	req.Header.Set("X-Event-Id", strconv.FormatUint(eventID, 10))
	req.Header.Set("X-Request-ID", uuid.NewString())
	for k, v := range w.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

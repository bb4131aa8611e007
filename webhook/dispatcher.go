package webhook

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"i4.energy/sms-gateway/eventbus"
)

// Dispatcher owns one worker per configured webhook URL, each
// subscribed independently to the event bus.
type Dispatcher struct {
	workers []*worker
	logger  *slog.Logger
}

// NewDispatcher validates every configuration and subscribes a worker
// to bus for each. No HTTP requests are made until Run starts the
// workers.
func NewDispatcher(bus *eventbus.Bus, logger *slog.Logger, configs []Config) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	workers := make([]*worker, 0, len(configs))
	for _, cfg := range configs {
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		client, err := cfg.buildClient()
		if err != nil {
			return nil, err
		}
		sub := bus.Subscribe(cfg.filter(), eventbus.LagDrop, cfg.backlog())
		workers = append(workers, &worker{
			cfg:    cfg,
			sub:    sub,
			client: client,
			logger: logger.With("component", "webhook", "url", cfg.URL),
		})
	}

	return &Dispatcher{workers: workers, logger: logger}, nil
}

// Run drives every worker until ctx is cancelled, at which point each
// worker unsubscribes from the bus and Run returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range d.workers {
		w := w
		g.Go(func() error {
			return w.run(ctx)
		})
	}
	return g.Wait()
}

package metrics

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const pushJobName = "finops_api"

// Pusher periodically replaces the job's metric group on a Prometheus
// Pushgateway. It is optional; a non-positive interval disables it.
type Pusher struct {
	pusher   *push.Pusher
	interval time.Duration
	stopChan chan struct{}
}

// NewPusher creates a pusher for the given Pushgateway URL backed by the
// given gatherer.
func NewPusher(url string, interval time.Duration, gatherer prometheus.Gatherer) *Pusher {
	return &Pusher{
		pusher:   push.New(url, pushJobName).Gatherer(gatherer),
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic push loop. It is a no-op when the push interval
// is not configured.
func (p *Pusher) Start(ctx context.Context) {
	if p.interval <= 0 {
		return
	}
	log.Printf("Starting Pushgateway loop with interval %s", p.interval)
	go p.pushLoop(ctx)
}

func (p *Pusher) pushLoop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.Push(ctx); err != nil {
				log.Printf("Failed to push metrics to Pushgateway: %v", err)
			}
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Push replaces the job's metric group on the Pushgateway once.
func (p *Pusher) Push(ctx context.Context) error {
	return p.pusher.PushContext(ctx)
}

// Stop terminates the push loop.
func (p *Pusher) Stop() {
	close(p.stopChan)
}

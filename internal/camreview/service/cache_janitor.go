package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper is anything that can drop its expired entries.
type Sweeper interface {
	Sweep() int
}

// CacheJanitor periodically sweeps expired entries out of the roster and
// directory caches.  Reads already ignore expired entries, so the janitor
// only bounds memory; it runs as a background goroutine and is safe to stop
// via its context or the Stop method.
type CacheJanitor struct {
	sweepers []Sweeper
	interval time.Duration
	logger   *logrus.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCacheJanitor creates a janitor but does not start it.  Call Start to
// begin the background loop.  A non-positive interval defaults to 10
// minutes.
func NewCacheJanitor(interval time.Duration, logger *logrus.Logger, sweepers ...Sweeper) *CacheJanitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheJanitor{
		sweepers: sweepers,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.  The loop exits when ctx is
// cancelled or Stop is called.
func (j *CacheJanitor) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)

	go j.loop(ctx)

	j.logger.WithField("interval", j.interval).Info("cache janitor started")
}

// Stop signals the janitor to exit and waits for it to finish.
func (j *CacheJanitor) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	<-j.done
}

func (j *CacheJanitor) loop(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *CacheJanitor) sweep() {
	dropped := 0
	for _, s := range j.sweepers {
		dropped += s.Sweep()
	}
	if dropped > 0 {
		j.logger.WithField("dropped", dropped).Debug("cache janitor swept expired entries")
	}
}

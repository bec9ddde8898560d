package shiftlight

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

var reconnectDelay = time.Second

type connection interface {
	Open() error
	Close() error
	Start(ctx context.Context) error
	Name() string
}

// maintain keeps a driver connection alive for the life of the context,
// reopening it after any error.
func maintain(ctx context.Context, c connection) error {
	opened := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !opened {
			if err := c.Open(); err != nil {
				log.WithField("err", err).Errorf("%s: unable to open", c.Name())
				sleepCtx(ctx, reconnectDelay)
				continue
			}
			opened = true
		}
		err := c.Start(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithField("err", err).Errorf("%s: restarting after error", c.Name())
		if err := c.Close(); err != nil {
			log.WithField("err", err).Warnf("%s: unable to close", c.Name())
		}
		opened = false
		sleepCtx(ctx, reconnectDelay)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

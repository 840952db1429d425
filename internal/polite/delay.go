package polite

import (
	"context"
	"math/rand/v2"
	"time"
)

// DelayProfile names a pause range applied before every request.
type DelayProfile string

const (
	ProfileOff      DelayProfile = "off"
	ProfileNormal   DelayProfile = "normal"
	ProfileCautious DelayProfile = "cautious"
)

// Delay pauses for a random duration in [Min, Max).
type Delay struct {
	Min time.Duration
	Max time.Duration
}

// NewDelay returns the delay for profile, or nil for "off" and unknown names.
func NewDelay(profile DelayProfile) *Delay {
	switch profile {
	case ProfileNormal:
		return &Delay{Min: 300 * time.Millisecond, Max: time.Second}
	case ProfileCautious:
		return &Delay{Min: time.Second, Max: 3 * time.Second}
	default:
		return nil
	}
}

// Wait sleeps unless ctx is done first.
func (d *Delay) Wait(ctx context.Context) error {
	t := time.NewTimer(d.next())
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Delay) next() time.Duration {
	if d.Min >= d.Max {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int64N(int64(d.Max-d.Min)))
}

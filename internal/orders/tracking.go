package orders

import (
	"context"
	"fmt"
	"math/rand"
)

const (
	trackingCounter     = "order_tracking"
	trackingSuffixSpace = 10000
)

type sequencer interface {
	NextSequence(ctx context.Context, name string) (int64, error)
}

// TrackingIDGenerator issues public order numbers from a shared counter with a
// random four digit suffix, so ids are unique across instances and hard to
// enumerate.
type TrackingIDGenerator struct {
	seq    sequencer
	base   int64
	suffix func() int64
}

// NewTrackingIDGenerator binds the generator to a counter store.
func NewTrackingIDGenerator(seq sequencer, base int64) (*TrackingIDGenerator, error) {
	if seq == nil {
		return nil, fmt.Errorf("sequence store required")
	}
	if base < 0 {
		return nil, fmt.Errorf("tracking id base must not be negative")
	}
	return &TrackingIDGenerator{
		seq:    seq,
		base:   base,
		suffix: func() int64 { return rand.Int63n(trackingSuffixSpace) },
	}, nil
}

// Next returns (base + counter) * 10000 + suffix.
func (g *TrackingIDGenerator) Next(ctx context.Context) (int64, error) {
	n, err := g.seq.NextSequence(ctx, trackingCounter)
	if err != nil {
		return 0, fmt.Errorf("next tracking sequence: %w", err)
	}
	return (g.base+n)*trackingSuffixSpace + g.suffix(), nil
}

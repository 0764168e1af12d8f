package production

import (
	"sync/atomic"

	bt "github.com/comalice/behaviortreex"
)

// ChannelPublisher is a bt.TickObserver that forwards tick records to a Go
// channel. Publishing never blocks the tick: records are dropped when the
// channel is full.
type ChannelPublisher struct {
	ch      chan<- bt.TickRecord
	dropped atomic.Uint64
}

var _ bt.TickObserver = (*ChannelPublisher)(nil)

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- bt.TickRecord) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) ObserveTick(rec bt.TickRecord) {
	select {
	case p.ch <- rec:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns the number of records lost to backpressure.
func (p *ChannelPublisher) Dropped() uint64 { return p.dropped.Load() }

// Close closes the output channel. The observed trees must not tick again.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

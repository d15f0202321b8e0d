package services

import "sync/atomic"

// requestEpoch orders the requests of one logical data stream. A response is
// applied only while its epoch is still the newest one issued.
type requestEpoch struct {
	n atomic.Uint64
}

func (e *requestEpoch) next() uint64 {
	return e.n.Add(1)
}

func (e *requestEpoch) isCurrent(epoch uint64) bool {
	return e.n.Load() == epoch
}

// invalidate makes every issued epoch stale.
func (e *requestEpoch) invalidate() {
	e.n.Add(1)
}

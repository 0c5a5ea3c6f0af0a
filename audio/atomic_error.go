package audio

import "sync/atomic"

// atomicError keeps the first error stored in it. It never blocks, so the render thread may use it.
type atomicError struct {
	err atomic.Pointer[error]
}

func (a *atomicError) TryStore(err error) {
	if err == nil {
		return
	}
	a.err.CompareAndSwap(nil, &err)
}

func (a *atomicError) Load() error {
	if p := a.err.Load(); p != nil {
		return *p
	}
	return nil
}

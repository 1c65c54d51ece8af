// Package lazy holds process-wide client handles that are built on first use
// and torn down once.
package lazy

import "sync"

type Value[T any] struct {
	build  func() (T, error)
	value  T
	built  bool
	closed bool
	mtx    sync.RWMutex
}

// Get returns the handle, building it on the first call. Concurrent first
// callers block on the same construction. A failed build is retried on the
// next call. Once built, callers only share a read lock.
func (v *Value[T]) Get() (T, error) {
	if value, ok, err := v.load(); ok {
		return value, err
	}

	v.mtx.Lock()
	defer v.mtx.Unlock()

	var zero T

	if v.closed {
		return zero, ErrClosed
	}

	if v.built {
		return v.value, nil
	}

	value, err := v.build()
	if err != nil {
		return zero, err
	}

	v.value = value
	v.built = true

	return value, nil
}

// load reports ok when the handle is settled, either built or closed.
func (v *Value[T]) load() (T, bool, error) {
	v.mtx.RLock()
	defer v.mtx.RUnlock()

	var zero T

	if v.closed {
		return zero, true, ErrClosed
	}

	if v.built {
		return v.value, true, nil
	}

	return zero, false, nil
}

// Close runs teardown on the handle if it was ever built. Later Get calls fail.
func (v *Value[T]) Close(teardown func(T) error) error {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if v.closed {
		return nil
	}

	v.closed = true

	if !v.built || teardown == nil {
		return nil
	}

	return teardown(v.value)
}

func New[T any](build func() (T, error)) *Value[T] {
	return &Value[T]{build: build}
}

package util

import "sync/atomic"

// SafeFlag is a boolean that is safe to use concurrently.
type SafeFlag struct {
	value atomic.Bool
}

// NewSafeBool creates a new SafeFlag set to false.
func NewSafeBool() *SafeFlag {
	return &SafeFlag{}
}

// NewSafeBoolWithValue creates a new SafeFlag with an initial value.
func NewSafeBoolWithValue(initialValue bool) *SafeFlag {
	f := &SafeFlag{}
	f.value.Store(initialValue)
	return f
}

// Set sets the value of the flag and returns the new value.
func (sf *SafeFlag) Set(newValue bool) bool {
	sf.value.Store(newValue)
	return newValue
}

// Value returns the current value of the flag.
func (sf *SafeFlag) Value() bool {
	return sf.value.Load()
}

// Toggle flips the flag and returns the new value.
func (sf *SafeFlag) Toggle() bool {
	for {
		old := sf.value.Load()
		if sf.value.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// TrySet sets the flag to true and reports whether it was previously false.
// Exactly one of several concurrent callers observes true.
func (sf *SafeFlag) TrySet() bool {
	return sf.value.CompareAndSwap(false, true)
}

package pool

// Sink is the three-channel completion contract for an acquisition.
// Value followed by Done signals success; Error alone signals failure.
// Exactly one of the two outcomes occurs per request.
type Sink[T any] interface {
	Value(res T)
	Error(err error)
	Done()
}

// notifier is the uniform internal form both sink shapes resolve into at
// the call boundary. Exactly one of deliver or fail is invoked, never while
// holding the pool lock.
type notifier[T any] struct {
	deliver func(res T)
	fail    func(err error)
}

func sinkNotifier[T any](s Sink[T]) notifier[T] {
	return notifier[T]{
		deliver: func(res T) {
			s.Value(res)
			s.Done()
		},
		fail: s.Error,
	}
}

func funcNotifier[T any](fn func(T, error)) notifier[T] {
	return notifier[T]{
		deliver: func(res T) {
			fn(res, nil)
		},
		fail: func(err error) {
			var zero T
			fn(zero, err)
		},
	}
}

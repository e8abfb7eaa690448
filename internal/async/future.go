// Package async provides a minimal future for values computed on another goroutine.
package async

import "context"

// Future holds the eventual result of one asynchronous computation.
// A Future resolves exactly once; after Done is closed Value and Err are stable.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn on a new goroutine and returns a Future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn()
	}()
	return f
}

// Resolved returns an already completed Future.
func Resolved[T any](value T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: value, err: err}
	close(f.done)
	return f
}

// Then schedules fn to run once f resolves and returns a Future for fn's result.
func Then[T, U any](f *Future[T], fn func(T, error) (U, error)) *Future[U] {
	return Go(func() (U, error) {
		<-f.done
		return fn(f.value, f.err)
	})
}

// Done is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future resolves or ctx is done.
// Giving up on ctx does not stop the underlying computation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

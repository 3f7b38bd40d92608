package pathkit

import (
	"context"
	"sync"
	"sync/atomic"
)

// CallbackChangeToken is a ChangeToken fired by a driver through
// SignalChange.
type CallbackChangeToken struct {
	mu        sync.Mutex
	changed   atomic.Bool
	callbacks map[int]func()
	next      int
}

// NewCallbackChangeToken creates an unfired token.
func NewCallbackChangeToken() *CallbackChangeToken {
	return &CallbackChangeToken{callbacks: make(map[int]func())}
}

func (t *CallbackChangeToken) HasChanged() bool {
	return t.changed.Load()
}

func (t *CallbackChangeToken) ActiveChangeCallbacks() bool {
	return true
}

// RegisterChangeCallback adds callback. If the token already fired the
// callback runs immediately.
func (t *CallbackChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	if t.changed.Load() {
		callback()
		return func() {}
	}

	t.mu.Lock()
	id := t.next
	t.next++
	t.callbacks[id] = callback
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.callbacks, id)
		t.mu.Unlock()
	}
}

// SignalChange fires the token once; later calls do nothing.
func (t *CallbackChangeToken) SignalChange() {
	if t.changed.Swap(true) {
		return
	}

	t.mu.Lock()
	callbacks := make([]func(), 0, len(t.callbacks))
	for _, cb := range t.callbacks {
		callbacks = append(callbacks, cb)
	}
	clear(t.callbacks)
	t.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// CompositeChangeToken fires when any of its tokens fires.
type CompositeChangeToken struct {
	tokens []ChangeToken
}

func NewCompositeChangeToken(tokens ...ChangeToken) *CompositeChangeToken {
	return &CompositeChangeToken{tokens: tokens}
}

func (c *CompositeChangeToken) HasChanged() bool {
	for _, t := range c.tokens {
		if t.HasChanged() {
			return true
		}
	}
	return false
}

func (c *CompositeChangeToken) ActiveChangeCallbacks() bool {
	for _, t := range c.tokens {
		if !t.ActiveChangeCallbacks() {
			return false
		}
	}
	return len(c.tokens) > 0
}

func (c *CompositeChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	var once sync.Once
	fire := func() { once.Do(callback) }

	unregisters := make([]func(), 0, len(c.tokens))
	for _, t := range c.tokens {
		unregisters = append(unregisters, t.RegisterChangeCallback(fire))
	}
	return func() {
		for _, u := range unregisters {
			u()
		}
	}
}

// OnChange keeps watching: each time the token from produce fires, action
// runs and a fresh token is requested. The returned cancel stops the loop.
func OnChange(produce func() (ChangeToken, error), action func()) (cancel func()) {
	ctx, cancelFunc := context.WithCancel(context.Background())

	go func() {
		for {
			token, err := produce()
			if err != nil {
				logEntry().WithError(err).Debug("change token producer failed")
				return
			}

			done := make(chan struct{})
			var once sync.Once
			unregister := token.RegisterChangeCallback(func() {
				once.Do(func() { close(done) })
			})

			select {
			case <-ctx.Done():
				unregister()
				return
			case <-done:
				unregister()
				action()
			}
		}
	}()

	return cancelFunc
}

package behavior

import "sync"

// Pending is an asynchronous outcome a callable may return instead of an
// immediate value. The bound method does not wait for it; the resolved
// value is captured once the outcome settles.
type Pending struct {
	once sync.Once
	done chan struct{}
	val  any
	err  error
}

// NewPending creates an unsettled outcome.
func NewPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Go runs fn on a new goroutine and settles the returned Pending with its
// outcome.
func Go(fn func() (any, error)) *Pending {
	p := NewPending()
	go func() {
		v, err := fn()
		if err != nil {
			p.Reject(err)
			return
		}
		p.Resolve(v)
	}()
	return p
}

// Resolve settles p with v. Only the first settlement counts.
func (p *Pending) Resolve(v any) {
	p.once.Do(func() {
		p.val = v
		close(p.done)
	})
}

// Reject settles p with err. Only the first settlement counts.
func (p *Pending) Reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once p has settled.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Await blocks until p settles and returns its outcome.
func (p *Pending) Await() (any, error) {
	<-p.done
	return p.val, p.err
}

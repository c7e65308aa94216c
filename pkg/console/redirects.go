package console

import "sync"

// Redirects records navigation requests from the session manager so the
// console can hand them to the operator on the next session poll.
type Redirects struct {
	mu      sync.Mutex
	pending string
}

// NewRedirects creates an empty recorder
func NewRedirects() *Redirects {
	return &Redirects{}
}

// Navigate records path as the pending redirect
func (r *Redirects) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = path
}

// Take returns and clears the pending redirect
func (r *Redirects) Take() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	path := r.pending
	r.pending = ""
	return path
}

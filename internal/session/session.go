// Package session holds the sign-in gate in front of the application views.
package session

import "sync"

// Gate tracks whether the user has signed in. It starts locked and opens
// exactly once; there is no logout.
type Gate struct {
	mu            sync.RWMutex
	authenticated bool
}

// Login opens the gate. It reports whether this call changed the state.
func (g *Gate) Login() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authenticated {
		return false
	}
	g.authenticated = true
	return true
}

// Authenticated reports whether Login has been called.
func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}

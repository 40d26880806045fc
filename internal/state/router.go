package state

import (
	"fmt"
	"sync"
)

// View identifies which screen is visible after sign-in.
type View int

const (
	ViewDashboard View = iota // Brief form and latest result.
	ViewTasks                 // Review task list.
)

// String returns the tab label for the view.
func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewTasks:
		return "My Tasks"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// Views lists the selectable views in tab order.
var Views = []View{ViewDashboard, ViewTasks}

// Router holds the active view. Switching views has no effect on any other
// component.
type Router struct {
	mu     sync.RWMutex
	active View
}

// Select makes v the active view.
func (r *Router) Select(v View) error {
	if v != ViewDashboard && v != ViewTasks {
		return fmt.Errorf("%w: %d", ErrUnknownView, int(v))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = v
	return nil
}

// Toggle switches between the dashboard and the task list and returns the
// newly active view.
func (r *Router) Toggle() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == ViewDashboard {
		r.active = ViewTasks
	} else {
		r.active = ViewDashboard
	}
	return r.active
}

// Active returns the visible view.
func (r *Router) Active() View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

package form

import (
	"sync"
	"time"
)

// Registry hands out one Controller per key, giving every visitor's form its
// own lifecycle. The in-flight guard only works when a visitor's retries hit
// the same controller, so controllers are kept between requests and swept
// once they settle.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry() *Registry {
	r := &Registry{controllers: make(map[string]*Controller)}
	go r.sweep()
	return r
}

// Get returns the controller for key, creating it on first use.
func (r *Registry) Get(key string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[key]
	if !ok {
		c = &Controller{}
		r.controllers[key] = c
	}
	return c
}

func (r *Registry) sweep() {
	for {
		time.Sleep(10 * time.Minute)
		r.mu.Lock()
		for key, c := range r.controllers {
			if !c.Pending() {
				delete(r.controllers, key)
			}
		}
		r.mu.Unlock()
	}
}

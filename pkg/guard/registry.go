package guard

import (
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/warden/pkg/rbac"
)

// Route is a guarded route and its requirement
type Route struct {
	Name        string
	Path        string
	Requirement rbac.Requirement
}

// Registry maps route names to their requirements
type Registry struct {
	mu     sync.RWMutex
	routes map[string]Route
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]Route)}
}

// Handle registers handler on router under name and records req for it.
// A zero requirement still demands a signed-in caller.
func (r *Registry) Handle(router *mux.Router, name, path string, req rbac.Requirement, handler http.Handler) *mux.Route {
	r.mu.Lock()
	r.routes[name] = Route{Name: name, Path: path, Requirement: req}
	r.mu.Unlock()

	return router.Handle(path, handler).Name(name)
}

// HandleFunc is Handle for a handler function
func (r *Registry) HandleFunc(router *mux.Router, name, path string, req rbac.Requirement, fn http.HandlerFunc) *mux.Route {
	return r.Handle(router, name, path, req, fn)
}

// Lookup returns the route registered under name
func (r *Registry) Lookup(name string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[name]
	return route, ok
}

// Routes lists registered routes sorted by name
func (r *Registry) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Name < routes[j].Name })
	return routes
}

// Package console serves the local operator console: a JSON surface over the
// session manager and the Directory catalog, with admin routes gated by
// navigation guards.
//
// Routes:
//
//	POST   /auth/login            sign in ({username, password})
//	POST   /auth/logout           sign out
//	GET    /auth/session          current session, menu, pending redirect
//	GET    /unauthorized          landing page for denied navigation
//	GET    /notifications         active toasts
//	DELETE /notifications/{id}    dismiss a toast
//	GET    /healthz, /readyz      probes
//	       /admin/...             guarded dashboard, menu and catalog CRUD
package console

// Package guard decides whether a navigation may proceed.
//
// Guards read the current session snapshot and never block on I/O. A denial
// is an Outcome naming where to go instead, not an error:
//
//	not signed in         -> /auth/login
//	missing role          -> /unauthorized
//	missing permission    -> /unauthorized
//
// Requirements are attached to gorilla/mux routes at registration time through
// a Registry, and Middleware enforces them with 302 redirects.
package guard

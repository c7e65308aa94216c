// Package session owns the authentication session lifecycle.
//
// # Components
//
// Store holds the current Session as one value. Every write replaces the whole
// value, readers get a consistent snapshot and subscribers see writes in order.
// Each identity change (login, clear) starts a new epoch; in-flight operations
// commit with ReplaceIf against the epoch they started in, so a stale login or
// refresh cannot resurrect a session that was logged out meanwhile.
//
// TokenClock schedules one silent refresh at expiry minus a leeway and cancels
// the previous timer on every re-arm.
//
// Manager talks to the Directory: Login, Logout, RefreshAccessToken and
// RestoreSession, persisting the token pair through a tokenstore.Store.
//
// # Usage
//
//	mgr := session.NewManager(client, store, logger,
//		session.WithMetrics(metrics),
//		session.WithNotifier(hub),
//	)
//	defer mgr.Close()
//
//	_ = mgr.RestoreSession(ctx) // silent on failure
//	if !mgr.IsAuthenticated() {
//		user, err := mgr.Login(ctx, username, password)
//		...
//	}
//	if mgr.HasPermission("view_user") { ... }
package session

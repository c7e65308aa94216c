// Package httputil provides HTTP helpers shared by the warden console.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, snapshot)
//	httputil.WriteErrorMessage(w, http.StatusBadGateway, "Unable to connect to server")
//
// # Request Parsing
//
//	var req LoginForm
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
//	page, err := httputil.ParseQueryInt(r, "page", 1)
//
// # Validation
//
//	if !httputil.ValidateAll(w,
//		httputil.RequireMinLength("username", form.Username, 3),
//		httputil.RequireMinLength("password", form.Password, 6),
//	) {
//		return
//	}
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.RecoveryMiddleware(logger),
//		httputil.LoggingMiddleware(logger),
//	)(router)
package httputil

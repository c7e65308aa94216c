// Package async provides safe goroutine execution for background session work.
//
// SafeGo runs a function in its own goroutine with a timeout, panic recovery and
// error logging through logrus:
//
//	async.SafeGo(ctx, 30*time.Second, "token refresh", func(ctx context.Context) error {
//		_, err := manager.RefreshAccessToken(ctx)
//		return err
//	})
//
// The session manager uses it for the one-shot refresh triggered when a freshly
// obtained access token is already inside its refresh window.
package async

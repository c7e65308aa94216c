// Package cli provides the warden command-line interface.
//
// Every command loads configuration from WARDEN_* environment variables,
// restores the persisted session from the configured token store and then
// acts on it. Tokens live in ~/.config/warden/tokens.yaml by default, so a
// login in one invocation is visible to the next.
//
// # Commands
//
// login: Sign in and persist the token pair
//
//	warden login --username admin
//	Password: ******
//
// logout: Revoke the refresh token and clear local state
//
//	warden logout
//
// whoami: Show the signed-in user, roles and effective permissions
//
//	warden whoami
//
// can: Check a role and/or permission the way a route guard would
//
//	warden can --permission delete_user
//	warden can --role Admin --permission view_role
//
// refresh: Exchange the refresh token for a new access token
//
//	warden refresh
//
// users, roles, permissions: List the Directory catalog
//
//	warden users --search ali --active true
//	warden roles --page 2 --page-size 20
//	warden permissions --method GET
//
// serve: Run the operator console and the metrics endpoint
//
//	warden serve
//
// # Configuration
//
//	export WARDEN_API_URL="https://directory.example.com/api"
//	export WARDEN_TOKEN_STORE=redis WARDEN_REDIS_URL=redis://localhost:6379/0
//	# Or use --api-url on any command
package cli

package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/platinummonkey/warden/pkg/console"
	"github.com/platinummonkey/warden/pkg/guard"
	"github.com/platinummonkey/warden/pkg/rbac"
	"github.com/platinummonkey/warden/pkg/session"
)

var (
	errNotLoggedIn = errors.New("not logged in (run `warden login`)")
	errDenied      = errors.New("access denied")
)

func newLoginCommand() *Command {
	cmd := &Command{
		Name:        "login",
		Description: "Sign in to the Directory",
		Flags:       flag.NewFlagSet("login", flag.ContinueOnError),
		Run:         runLogin,
	}

	cmd.Flags.String("username", "", "Username")
	cmd.Flags.String("password", "", "Password (default $WARDEN_PASSWORD, else read from stdin)")
	addCommonFlags(cmd.Flags)

	return cmd
}

func runLogin(args []string) error {
	cmd := newLoginCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	username := cmd.Flags.Lookup("username").Value.String()
	password := cmd.Flags.Lookup("password").Value.String()
	if password == "" {
		password = os.Getenv("WARDEN_PASSWORD")
	}
	if password == "" {
		var err error
		if password, err = readPassword(); err != nil {
			return err
		}
	}

	if len(username) < console.MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters", console.MinUsernameLength)
	}
	if len(password) < console.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", console.MinPasswordLength)
	}

	cfg, err := loadConfig(cmd.Flags, "warn")
	if err != nil {
		return err
	}
	ctx := context.Background()
	e, err := newEnv(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.manager.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %s", console.LoginErrorMessage(err))
	}

	fmt.Fprintf(stdout, "Logged in as %s", user.FullName())
	if roles := user.RoleNames(); len(roles) > 0 {
		fmt.Fprintf(stdout, " (%s)", strings.Join(roles, ", "))
	}
	fmt.Fprintln(stdout)
	return nil
}

func readPassword() (string, error) {
	fmt.Fprint(stdout, "Password: ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCommand() *Command {
	cmd := &Command{
		Name:        "logout",
		Description: "Sign out and forget the stored tokens",
		Flags:       flag.NewFlagSet("logout", flag.ContinueOnError),
		Run:         runLogout,
	}
	addCommonFlags(cmd.Flags)
	return cmd
}

func runLogout(args []string) error {
	cmd := newLogoutCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd.Flags, "warn")
	if err != nil {
		return err
	}
	ctx := context.Background()
	e, err := newEnv(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	// Logout revokes whatever refresh token is persisted, signed in or not
	e.manager.Logout(ctx)
	fmt.Fprintln(stdout, "Logged out")
	return nil
}

func newWhoamiCommand() *Command {
	cmd := &Command{
		Name:        "whoami",
		Description: "Show the signed-in user and effective permissions",
		Flags:       flag.NewFlagSet("whoami", flag.ContinueOnError),
		Run:         runWhoami,
	}
	addCommonFlags(cmd.Flags)
	return cmd
}

func runWhoami(args []string) error {
	cmd := newWhoamiCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd.Flags, "warn")
	if err != nil {
		return err
	}
	ctx := context.Background()
	e, err := newEnv(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.restore(ctx); err != nil {
		return err
	}

	user := e.manager.CurrentUser()
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Username:\t%s\n", user.Username)
	fmt.Fprintf(tw, "Name:\t%s\n", user.FullName())
	if user.Email != "" {
		fmt.Fprintf(tw, "Email:\t%s\n", user.Email)
	}
	roles := "No roles assigned"
	if names := user.RoleNames(); len(names) > 0 {
		roles = strings.Join(names, ", ")
	}
	fmt.Fprintf(tw, "Roles:\t%s\n", roles)

	codenames := make([]string, 0)
	for _, p := range rbac.EffectivePermissions(user) {
		codenames = append(codenames, p.Codename)
	}
	fmt.Fprintf(tw, "Permissions:\t%s\n", strings.Join(codenames, ", "))
	if at, ok := e.manager.ClockDeadline(); ok {
		fmt.Fprintf(tw, "Next refresh:\t%s\n", at.Format(time.RFC3339))
	}
	return tw.Flush()
}

func newCanCommand() *Command {
	cmd := &Command{
		Name:        "can",
		Description: "Check a role and/or permission like a route guard",
		Flags:       flag.NewFlagSet("can", flag.ContinueOnError),
		Run:         runCan,
	}

	cmd.Flags.String("role", "", "Required role name")
	cmd.Flags.String("permission", "", "Required permission codename")
	addCommonFlags(cmd.Flags)

	return cmd
}

func runCan(args []string) error {
	cmd := newCanCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	req := rbac.Requirement{
		Role:       cmd.Flags.Lookup("role").Value.String(),
		Permission: cmd.Flags.Lookup("permission").Value.String(),
	}

	cfg, err := loadConfig(cmd.Flags, "warn")
	if err != nil {
		return err
	}
	ctx := context.Background()
	e, err := newEnv(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	// An absent session is an answer here, not an error
	if err := e.manager.RestoreSession(ctx); err != nil {
		e.logger.WithError(err).Debug("restore failed")
	}

	outcome := guard.Evaluate(e.manager.Session(), req)
	if outcome.Allowed() {
		fmt.Fprintf(stdout, "allowed: %s\n", req)
		return nil
	}
	fmt.Fprintf(stdout, "denied: %s (redirect to %s)\n", req, outcome.Destination())
	return errDenied
}

func newRefreshCommand() *Command {
	cmd := &Command{
		Name:        "refresh",
		Description: "Exchange the refresh token for a new access token",
		Flags:       flag.NewFlagSet("refresh", flag.ContinueOnError),
		Run:         runRefresh,
	}
	addCommonFlags(cmd.Flags)
	return cmd
}

func runRefresh(args []string) error {
	cmd := newRefreshCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd.Flags, "warn")
	if err != nil {
		return err
	}
	ctx := context.Background()
	e, err := newEnv(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.restore(ctx); err != nil {
		return err
	}
	if _, err := e.manager.RefreshAccessToken(ctx); err != nil {
		if errors.Is(err, session.ErrNoRefreshToken) {
			return errNotLoggedIn
		}
		return fmt.Errorf("refresh failed, please log in again: %w", err)
	}

	fmt.Fprintln(stdout, "Access token refreshed")
	if at, ok := e.manager.ClockDeadline(); ok {
		fmt.Fprintf(stdout, "Next refresh due at %s\n", at.Format(time.RFC3339))
	}
	return nil
}

package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/platinummonkey/warden/pkg/directory"
)

func addListFlags(fs *flag.FlagSet) {
	fs.Int("page", 1, "Page number")
	fs.Int("page-size", 10, "Page size")
	fs.String("search", "", "Search term")
	addCommonFlags(fs)
}

func listOptions(fs *flag.FlagSet) (directory.ListOptions, error) {
	page, err := strconv.Atoi(fs.Lookup("page").Value.String())
	if err != nil || page < 1 {
		return directory.ListOptions{}, fmt.Errorf("invalid page: %s", fs.Lookup("page").Value)
	}
	size, err := strconv.Atoi(fs.Lookup("page-size").Value.String())
	if err != nil || size < 1 {
		return directory.ListOptions{}, fmt.Errorf("invalid page size: %s", fs.Lookup("page-size").Value)
	}
	return directory.ListOptions{
		Page:     page,
		PageSize: size,
		Search:   fs.Lookup("search").Value.String(),
	}, nil
}

// withCatalog restores the session and runs fn with a Directory client
// that authenticates as the signed-in operator
func withCatalog(fs *flag.FlagSet, fn func(ctx context.Context, client *directory.Client) error) error {
	cfg, err := loadConfig(fs, "warn")
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
	return fn(ctx, e.client)
}

func printFooter(count, shown int, hasNext bool) {
	fmt.Fprintf(stdout, "\nShowing %d of %d", shown, count)
	if hasNext {
		fmt.Fprint(stdout, " (more with --page)")
	}
	fmt.Fprintln(stdout)
}

func newUsersCommand() *Command {
	cmd := &Command{
		Name:        "users",
		Description: "List Directory users",
		Flags:       flag.NewFlagSet("users", flag.ContinueOnError),
		Run:         runUsers,
	}
	cmd.Flags.String("active", "", "Filter by active state (true or false)")
	addListFlags(cmd.Flags)
	return cmd
}

func runUsers(args []string) error {
	cmd := newUsersCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	opts, err := listOptions(cmd.Flags)
	if err != nil {
		return err
	}
	filters := directory.UserFilters{ListOptions: opts}
	if v := cmd.Flags.Lookup("active").Value.String(); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid active filter: %s", v)
		}
		filters.IsActive = &active
	}

	return withCatalog(cmd.Flags, func(ctx context.Context, client *directory.Client) error {
		page, err := client.ListUsers(ctx, filters)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tACTIVE\tROLES")
		for i := range page.Results {
			u := &page.Results[i]
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\n",
				u.ID, u.Username, u.FullName(), u.Email, u.IsActive, strings.Join(u.RoleNames(), ","))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		printFooter(page.Count, len(page.Results), page.HasNext())
		return nil
	})
}

func newRolesCommand() *Command {
	cmd := &Command{
		Name:        "roles",
		Description: "List Directory roles",
		Flags:       flag.NewFlagSet("roles", flag.ContinueOnError),
		Run:         runRoles,
	}
	addListFlags(cmd.Flags)
	return cmd
}

func runRoles(args []string) error {
	cmd := newRolesCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	opts, err := listOptions(cmd.Flags)
	if err != nil {
		return err
	}

	return withCatalog(cmd.Flags, func(ctx context.Context, client *directory.Client) error {
		page, err := client.ListRoles(ctx, directory.RoleFilters{ListOptions: opts})
		if err != nil {
			return fmt.Errorf("failed to list roles: %w", err)
		}

		tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPERMISSIONS\tDESCRIPTION")
		for _, r := range page.Results {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", r.ID, r.Name, len(r.Permissions), r.Description)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		printFooter(page.Count, len(page.Results), page.HasNext())
		return nil
	})
}

func newPermissionsCommand() *Command {
	cmd := &Command{
		Name:        "permissions",
		Description: "List Directory permissions",
		Flags:       flag.NewFlagSet("permissions", flag.ContinueOnError),
		Run:         runPermissions,
	}
	cmd.Flags.String("endpoint", "", "Filter by API endpoint")
	cmd.Flags.String("method", "", "Filter by HTTP method")
	addListFlags(cmd.Flags)
	return cmd
}

func runPermissions(args []string) error {
	cmd := newPermissionsCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	opts, err := listOptions(cmd.Flags)
	if err != nil {
		return err
	}
	filters := directory.PermissionFilters{
		ListOptions: opts,
		APIEndpoint: cmd.Flags.Lookup("endpoint").Value.String(),
		HTTPMethod:  strings.ToUpper(cmd.Flags.Lookup("method").Value.String()),
	}

	return withCatalog(cmd.Flags, func(ctx context.Context, client *directory.Client) error {
		page, err := client.ListPermissions(ctx, filters)
		if err != nil {
			return fmt.Errorf("failed to list permissions: %w", err)
		}

		tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCODENAME\tNAME\tMETHOD\tENDPOINT")
		for _, p := range page.Results {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Codename, p.Name, p.HTTPMethod, p.APIEndpoint)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		printFooter(page.Count, len(page.Results), page.HasNext())
		return nil
	})
}

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/tripsync-admin/authapi"
	"github.com/jrsteele09/tripsync-admin/dashboardapi"
	"github.com/jrsteele09/tripsync-admin/users"
)

const passwordEnvVar = "TRIPSYNC_PASSWORD"

func (cl *client) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("login: --email is required")
	}
	if *password == "" {
		*password = os.Getenv(passwordEnvVar)
	}
	if *password == "" {
		p, err := readLine(cl.in, cl.errOut, "Password: ")
		if err != nil {
			return fmt.Errorf("login: read password: %w", err)
		}
		*password = p
	}

	if err := cl.store.Login(ctx, authapi.Credentials{Email: *email, Password: *password}); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(cl.out, "Signed in as %s\n", displayName(cl.store.State().User))
	return nil
}

func (cl *client) logout() error {
	cl.store.Logout()
	fmt.Fprintln(cl.out, "Signed out")
	return nil
}

func (cl *client) refresh(ctx context.Context) error {
	if err := cl.store.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	fmt.Fprintln(cl.out, "Access token refreshed")
	return nil
}

func (cl *client) whoami() error {
	u := cl.store.State().User
	if u == nil {
		return errors.New("whoami: no user profile in session")
	}
	w := tabwriter.NewWriter(cl.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", u.ID)
	fmt.Fprintf(w, "Name\t%s\n", displayName(u))
	fmt.Fprintf(w, "Email\t%s\n", u.Email)
	fmt.Fprintf(w, "Role\t%s\n", u.Role)
	if u.PermissionsAssigned() {
		perms := make([]string, 0, len(*u.Permissions))
		for _, p := range *u.Permissions {
			perms = append(perms, string(p))
		}
		fmt.Fprintf(w, "Permissions\t%s\n", strings.Join(perms, ", "))
	}
	return w.Flush()
}

func (cl *client) listTours(ctx context.Context, args []string) error {
	q, err := parseListQuery("tours", args)
	if err != nil {
		return err
	}
	page, err := cl.dashboard.ListTours(ctx, q)
	if err != nil {
		return err
	}
	return printPage(cl.out, page, "ID\tTITLE\tSTATUS\tSTART\tPARTICIPANTS", func(t dashboardapi.Tour) string {
		return fmt.Sprintf("%s\t%s\t%s\t%s\t%d/%d", t.ID, t.Title, t.Status, t.StartDate, t.CurrentParticipants, t.MaxParticipants)
	})
}

func (cl *client) listUsers(ctx context.Context, args []string) error {
	q, err := parseListQuery("users", args)
	if err != nil {
		return err
	}
	page, err := cl.dashboard.ListUsers(ctx, q)
	if err != nil {
		return err
	}
	return printPage(cl.out, page, "ID\tNAME\tEMAIL\tROLE", func(u users.User) string {
		return fmt.Sprintf("%s\t%s\t%s\t%s", u.ID, u.FullName, u.Email, u.Role)
	})
}

func (cl *client) listLocations(ctx context.Context, args []string) error {
	q, err := parseListQuery("locations", args)
	if err != nil {
		return err
	}
	page, err := cl.dashboard.ListLocations(ctx, q)
	if err != nil {
		return err
	}
	return printPage(cl.out, page, "ID\tNAME\tTYPE\tADDRESS", func(l dashboardapi.Location) string {
		return fmt.Sprintf("%s\t%s\t%s\t%s", l.ID, l.Name, l.LocationType, l.AddressOrEmpty())
	})
}

func parseListQuery(name string, args []string) (dashboardapi.ListQuery, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	page := fs.Int("page", dashboardapi.DefaultPage, "page number")
	size := fs.Int("size", dashboardapi.DefaultPageSize, "items per page")
	search := fs.String("search", "", "filter term")
	if err := fs.Parse(args); err != nil {
		return dashboardapi.ListQuery{}, err
	}
	return dashboardapi.ListQuery{Page: *page, PageSize: *size, Search: *search}, nil
}

func printPage[T any](out io.Writer, page dashboardapi.Page[T], header string, row func(T) string) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	for _, item := range page.Items {
		fmt.Fprintln(w, row(item))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\npage %d of %d (%d total)\n", page.Page, max(page.TotalPages, 1), page.Total)
	return nil
}

func displayName(u *users.User) string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

func readLine(r io.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

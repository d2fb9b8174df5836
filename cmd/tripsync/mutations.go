package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/tripsync-admin/dashboardapi"
	"github.com/jrsteele09/tripsync-admin/users"
)

// resource dispatches `<name> [action] ...`. With no action the resource is listed.
func (cl *client) resource(ctx context.Context, name string, args []string) error {
	action := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action, args = args[0], args[1:]
	}

	switch name + " " + action {
	case "tours list":
		return cl.listTours(ctx, args)
	case "tours create":
		return cl.saveTour(ctx, "", args)
	case "tours update":
		id, rest, err := splitID("tours update", args)
		if err != nil {
			return err
		}
		return cl.saveTour(ctx, id, rest)
	case "tours assign":
		return cl.assignParticipants(ctx, args)
	case "tours participants":
		return cl.listParticipants(ctx, args)
	case "users list":
		return cl.listUsers(ctx, args)
	case "users create":
		return cl.saveUser(ctx, "", args)
	case "users update":
		id, rest, err := splitID("users update", args)
		if err != nil {
			return err
		}
		return cl.saveUser(ctx, id, rest)
	case "locations list":
		return cl.listLocations(ctx, args)
	case "locations create":
		return cl.saveLocation(ctx, "", args)
	case "locations update":
		id, rest, err := splitID("locations update", args)
		if err != nil {
			return err
		}
		return cl.saveLocation(ctx, id, rest)
	}
	return fmt.Errorf("unknown %s action %q\n\n%s", name, action, usage)
}

// saveTour creates a tour when id is empty and patches it otherwise.
func (cl *client) saveTour(ctx context.Context, id string, args []string) error {
	fs := flag.NewFlagSet("tours", flag.ContinueOnError)
	title := fs.String("title", "", "tour title")
	description := fs.String("description", "", "tour description")
	start := fs.String("start", "", "start date (YYYY-MM-DD)")
	end := fs.String("end", "", "end date (YYYY-MM-DD)")
	maxParticipants := fs.Int("max", 0, "maximum participants")
	status := fs.String("status", "", "tour status")
	tags := fs.String("tags", "", "comma separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := dashboardapi.TourInput{
		Title:           *title,
		Description:     *description,
		StartDate:       *start,
		EndDate:         *end,
		MaxParticipants: *maxParticipants,
		Status:          dashboardapi.TourStatus(*status),
		Tags:            splitList(*tags),
	}

	if id == "" {
		if in.Title == "" || in.StartDate == "" || in.EndDate == "" {
			return errors.New("tours create: --title, --start and --end are required")
		}
		t, err := cl.dashboard.CreateTour(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cl.out, "Created tour %s (%s)\n", t.ID, t.Title)
		return nil
	}

	t, err := cl.dashboard.UpdateTour(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cl.out, "Updated tour %s (%s)\n", t.ID, t.Title)
	return nil
}

func (cl *client) assignParticipants(ctx context.Context, args []string) error {
	id, rest, err := splitID("tours assign", args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("tours assign", flag.ContinueOnError)
	ids := fs.String("users", "", "comma separated user ids")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	userIDs := splitList(*ids)
	if len(userIDs) == 0 {
		return errors.New("tours assign: --users is required")
	}

	if err := cl.dashboard.AssignParticipants(ctx, id, userIDs); err != nil {
		return err
	}
	fmt.Fprintf(cl.out, "Assigned %d participant(s) to tour %s\n", len(userIDs), id)
	return nil
}

func (cl *client) listParticipants(ctx context.Context, args []string) error {
	id, _, err := splitID("tours participants", args)
	if err != nil {
		return err
	}
	participants, err := cl.dashboard.ListTourParticipants(ctx, id)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cl.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tSTATUS\tREGISTERED")
	for _, p := range participants {
		user := cmp.Or(p.User.FullName, p.User.Email, p.UserID)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, user, p.Status, p.RegistrationDate)
	}
	return w.Flush()
}

// saveUser creates a user when id is empty and replaces its fields otherwise.
func (cl *client) saveUser(ctx context.Context, id string, args []string) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "initial password")
	name := fs.String("name", "", "full name")
	role := fs.String("role", "", "customer, tour_guide, tour_operator or admin")
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *role != "" && !users.Role(*role).Valid() {
		return fmt.Errorf("users: unknown role %q", *role)
	}

	in := dashboardapi.UserInput{
		Email:    *email,
		Password: *password,
		FullName: *name,
		Role:     *role,
		Phone:    *phone,
	}

	if id == "" {
		if in.Email == "" || in.Password == "" || in.FullName == "" {
			return errors.New("users create: --email, --password and --name are required")
		}
		u, err := cl.dashboard.CreateUser(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cl.out, "Created user %s (%s)\n", u.ID, u.Email)
		return nil
	}

	u, err := cl.dashboard.UpdateUser(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cl.out, "Updated user %s (%s)\n", u.ID, u.Email)
	return nil
}

// saveLocation creates a location when id is empty and patches it otherwise.
func (cl *client) saveLocation(ctx context.Context, id string, args []string) error {
	fs := flag.NewFlagSet("locations", flag.ContinueOnError)
	name := fs.String("name", "", "location name")
	description := fs.String("description", "", "description")
	locationType := fs.String("type", "", "location type")
	address := fs.String("address", "", "street address")
	category := fs.String("category", "", "category")
	amenities := fs.String("amenities", "", "comma separated amenities")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := dashboardapi.LocationInput{
		Name:         *name,
		Description:  *description,
		LocationType: *locationType,
		Address:      *address,
		Category:     *category,
		Amenities:    splitList(*amenities),
	}

	if id == "" {
		if in.Name == "" {
			return errors.New("locations create: --name is required")
		}
		l, err := cl.dashboard.CreateLocation(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cl.out, "Created location %s (%s)\n", l.ID, l.Name)
		return nil
	}

	l, err := cl.dashboard.UpdateLocation(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cl.out, "Updated location %s (%s)\n", l.ID, l.Name)
	return nil
}

// splitID takes the leading positional id off args.
func splitID(op string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%s: an id is required", op)
	}
	return args[0], args[1:], nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package dashboardapi

import (
	"context"
	"net/http"

	"github.com/jrsteele09/tripsync-admin/users"
)

func matchUser(u users.User, term string) bool {
	return containsAny(term, u.FullName, u.Email)
}

// ListUsers matches the search term against full name and email.
func (c *Client) ListUsers(ctx context.Context, q ListQuery) (Page[users.User], error) {
	return list(ctx, c, "list users", PathUsers, nil, q, matchUser)
}

func (c *Client) GetUser(ctx context.Context, id string) (*users.User, error) {
	var u users.User
	if err := c.get(ctx, "get user", itemPath(PathUsers, id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.delete(ctx, "delete user", itemPath(PathUsers, id))
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (*users.User, error) {
	var u users.User
	if err := c.send(ctx, "create user", http.MethodPost, PathUsers, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser replaces the user's editable fields. The users collection takes PUT, not PATCH.
func (c *Client) UpdateUser(ctx context.Context, id string, in UserInput) (*users.User, error) {
	if err := requireID("update user", id); err != nil {
		return nil, err
	}
	var u users.User
	if err := c.send(ctx, "update user", http.MethodPut, itemPath(PathUsers, id), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

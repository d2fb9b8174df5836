package dashboardapi

import (
	"context"
	"net/http"
	"net/url"
)

func matchLocation(l Location, term string) bool {
	return containsAny(term, l.Name, l.AddressOrEmpty())
}

// ListLocations asks the server to search as well; the local filter still
// applies in case the server ignores the parameter.
func (c *Client) ListLocations(ctx context.Context, q ListQuery) (Page[Location], error) {
	var query url.Values
	if search := q.normalized().Search; search != "" {
		query = url.Values{"search": {search}}
	}
	return list(ctx, c, "list locations", PathLocations, query, q, matchLocation)
}

func (c *Client) GetLocation(ctx context.Context, id string) (*Location, error) {
	var l Location
	if err := c.get(ctx, "get location", itemPath(PathLocations, id), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) DeleteLocation(ctx context.Context, id string) error {
	return c.delete(ctx, "delete location", itemPath(PathLocations, id))
}

func (c *Client) CreateLocation(ctx context.Context, in LocationInput) (*Location, error) {
	var l Location
	if err := c.send(ctx, "create location", http.MethodPost, PathLocations, in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLocation patches only the fields set in in.
func (c *Client) UpdateLocation(ctx context.Context, id string, in LocationInput) (*Location, error) {
	if err := requireID("update location", id); err != nil {
		return nil, err
	}
	var l Location
	if err := c.send(ctx, "update location", http.MethodPatch, itemPath(PathLocations, id), in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

package dashboardapi

import (
	"context"
	"net/http"
)

func matchTour(t Tour, term string) bool {
	return containsAny(term, t.Title, t.Description, string(t.Status), t.OrganizerID)
}

// ListTours matches the search term against title, description, status and organizer.
func (c *Client) ListTours(ctx context.Context, q ListQuery) (Page[Tour], error) {
	return list(ctx, c, "list tours", PathTours, nil, q, matchTour)
}

func (c *Client) GetTour(ctx context.Context, id string) (*Tour, error) {
	var t Tour
	if err := c.get(ctx, "get tour", itemPath(PathTours, id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTour(ctx context.Context, id string) error {
	return c.delete(ctx, "delete tour", itemPath(PathTours, id))
}

func (c *Client) CreateTour(ctx context.Context, in TourInput) (*Tour, error) {
	var t Tour
	if err := c.send(ctx, "create tour", http.MethodPost, PathTours, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTour patches only the fields set in in.
func (c *Client) UpdateTour(ctx context.Context, id string, in TourInput) (*Tour, error) {
	if err := requireID("update tour", id); err != nil {
		return nil, err
	}
	var t Tour
	if err := c.send(ctx, "update tour", http.MethodPatch, itemPath(PathTours, id), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// AssignParticipants registers the given users on a tour.
func (c *Client) AssignParticipants(ctx context.Context, tourID string, userIDs []string) error {
	if err := requireID("assign participants", tourID); err != nil {
		return err
	}
	body := assignParticipantsRequest{UserIDs: userIDs}
	if body.UserIDs == nil {
		body.UserIDs = []string{}
	}
	return c.send(ctx, "assign participants", http.MethodPost, participantsPath(tourID), body, nil)
}

func (c *Client) ListTourParticipants(ctx context.Context, tourID string) ([]TourParticipant, error) {
	if err := requireID("list participants", tourID); err != nil {
		return nil, err
	}
	var out listEnvelope[TourParticipant]
	if err := c.get(ctx, "list participants", participantsPath(tourID), nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		return []TourParticipant{}, nil
	}
	return out.Items, nil
}

func participantsPath(tourID string) string {
	return itemPath(PathTours, tourID) + "/participants"
}

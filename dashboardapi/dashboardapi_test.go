package dashboardapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/tripsync-admin/authapi"
	"github.com/jrsteele09/tripsync-admin/dashboardapi"
	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"github.com/jrsteele09/tripsync-admin/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testTours(n int) []dashboardapi.Tour {
	tours := make([]dashboardapi.Tour, 0, n)
	for i := 1; i <= n; i++ {
		status := dashboardapi.TourActive
		if i%2 == 0 {
			status = dashboardapi.TourDraft
		}
		tours = append(tours, dashboardapi.Tour{
			ID:          fmt.Sprintf("t-%d", i),
			Title:       fmt.Sprintf("Tour %d", i),
			Description: "Ha Long Bay cruise",
			Status:      status,
			OrganizerID: "org-1",
		})
	}
	return tours
}

type testFixture struct {
	server       *httptest.Server
	client       *dashboardapi.Client
	unauthorized int
	lastAuth     string
	lastQuery    string
	lastReqID    string
}

func setupTestFixture(t *testing.T, handler http.HandlerFunc) *testFixture {
	t.Helper()

	f := &testFixture{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		f.lastQuery = r.URL.RawQuery
		f.lastReqID = r.Header.Get("X-Request-Id")
		handler(w, r)
	}))
	t.Cleanup(f.server.Close)

	f.client = dashboardapi.New(f.server.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "A"}),
		dashboardapi.WithUnauthorizedHandler(func() { f.unauthorized++ }))
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_ListTours(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, testTours(25))
	})

	t.Run("pages locally", func(t *testing.T) {
		page, err := f.client.ListTours(context.Background(), dashboardapi.ListQuery{Page: 3})
		require.NoError(t, err)
		require.Equal(t, "Bearer A", f.lastAuth)
		require.NotEmpty(t, f.lastReqID)
		require.Equal(t, 25, page.Total)
		require.Equal(t, 3, page.TotalPages)
		require.Equal(t, 10, page.PageSize)
		require.Len(t, page.Items, 5)
		require.Equal(t, "t-21", page.Items[0].ID)
	})

	t.Run("filters on status", func(t *testing.T) {
		page, err := f.client.ListTours(context.Background(), dashboardapi.ListQuery{Search: " DRAFT "})
		require.NoError(t, err)
		require.Equal(t, 12, page.Total)
		for _, tour := range page.Items {
			require.Equal(t, dashboardapi.TourDraft, tour.Status)
		}
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page, err := f.client.ListTours(context.Background(), dashboardapi.ListQuery{Page: 9})
		require.NoError(t, err)
		require.Empty(t, page.Items)
		require.Equal(t, 25, page.Total)
	})
}

func TestClient_ListUsersWrappedResponse(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []users.User{
			{ID: "u-1", Email: "an@tripsync.test", FullName: "An Nguyen", Role: users.RoleTourGuide},
			{ID: "u-2", Email: "binh@tripsync.test", FullName: "Binh Tran", Role: users.RoleCustomer},
		}})
	})

	page, err := f.client.ListUsers(context.Background(), dashboardapi.ListQuery{Search: "binh"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "u-2", page.Items[0].ID)
}

func TestClient_ListLocationsSendsSearch(t *testing.T) {
	address := "1 Trang Tien, Hanoi"
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		// The server ignores the search parameter; the local filter still applies.
		writeJSON(w, []dashboardapi.Location{
			{ID: "l-1", Name: "Opera House", Address: &address},
			{ID: "l-2", Name: "Ben Thanh Market"},
		})
	})

	page, err := f.client.ListLocations(context.Background(), dashboardapi.ListQuery{Search: "hanoi"})
	require.NoError(t, err)
	require.Equal(t, "search=hanoi", f.lastQuery)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "l-1", page.Items[0].ID)
}

func TestClient_ListErrorYieldsEmptyPage(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]string{"message": "database unavailable"})
	})

	page, err := f.client.ListTours(context.Background(), dashboardapi.ListQuery{})
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrRejected)
	require.Equal(t, "database unavailable", err.Error())
	require.Empty(t, page.Items)
	require.Equal(t, 0, page.Total)
	require.Equal(t, 1, page.Page)
}

func TestClient_UnauthorizedLogsOut(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]string{"message": "Token expired"})
	})

	_, err := f.client.ListUsers(context.Background(), dashboardapi.ListQuery{})
	require.ErrorIs(t, err, apperrors.ErrTokenRejected)

	var apiErr *authapi.AuthError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, 1, f.unauthorized)
}

func TestClient_GetAndDelete(t *testing.T) {
	var deleted string
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/tours/t-1":
			writeJSON(w, testTours(1)[0])
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]string{"error": "Not found"})
		}
	})

	tour, err := f.client.GetTour(context.Background(), "t-1")
	require.NoError(t, err)
	require.Equal(t, "Tour 1", tour.Title)

	_, err = f.client.GetLocation(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, f.client.DeleteUser(context.Background(), "u-9"))
	require.Equal(t, "/api/users/u-9", deleted)
}

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        map[string]any
}

// setupRecordingFixture answers every request with reply and records what was sent.
func setupRecordingFixture(t *testing.T, reply any) (*testFixture, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.contentType = r.Header.Get("Content-Type")
		rec.body = nil
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		if reply == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, reply)
	})
	return f, rec
}

func TestClient_Mutations(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		reply  any
		call   func(c *dashboardapi.Client) error
		method string
		path   string
		body   map[string]any
	}{
		{
			name:  "create tour",
			reply: dashboardapi.Tour{ID: "t-9", Title: "Sapa Trek"},
			call: func(c *dashboardapi.Client) error {
				tour, err := c.CreateTour(ctx, dashboardapi.TourInput{
					Title:           "Sapa Trek",
					StartDate:       "2026-05-01",
					MaxParticipants: 12,
					Pricing:         &dashboardapi.TourPrice{Currency: "VND", Price: 1500000},
				})
				if err == nil && tour.ID != "t-9" {
					err = fmt.Errorf("unexpected tour %q", tour.ID)
				}
				return err
			},
			method: http.MethodPost,
			path:   "/api/tours",
			body: map[string]any{
				"title":           "Sapa Trek",
				"startDate":       "2026-05-01",
				"maxParticipants": float64(12),
				"pricing":         map[string]any{"currency": "VND", "price": float64(1500000)},
			},
		},
		{
			name:  "update tour sends only set fields",
			reply: dashboardapi.Tour{ID: "t-1", Status: dashboardapi.TourPublished},
			call: func(c *dashboardapi.Client) error {
				_, err := c.UpdateTour(ctx, "t-1", dashboardapi.TourInput{Status: dashboardapi.TourPublished})
				return err
			},
			method: http.MethodPatch,
			path:   "/api/tours/t-1",
			body:   map[string]any{"status": "published"},
		},
		{
			name: "assign participants",
			call: func(c *dashboardapi.Client) error {
				return c.AssignParticipants(ctx, "t-1", []string{"u-1", "u-2"})
			},
			method: http.MethodPost,
			path:   "/api/tours/t-1/participants",
			body:   map[string]any{"userIds": []any{"u-1", "u-2"}},
		},
		{
			name:  "create user",
			reply: users.User{ID: "u-3", Email: "guide@tripsync.test"},
			call: func(c *dashboardapi.Client) error {
				_, err := c.CreateUser(ctx, dashboardapi.UserInput{Email: "guide@tripsync.test", FullName: "Guide", Role: string(users.RoleTourGuide), Password: "s3cret"})
				return err
			},
			method: http.MethodPost,
			path:   "/api/users",
			body:   map[string]any{"email": "guide@tripsync.test", "fullName": "Guide", "role": "tour_guide", "password": "s3cret"},
		},
		{
			name:  "update user uses put",
			reply: users.User{ID: "u-3"},
			call: func(c *dashboardapi.Client) error {
				_, err := c.UpdateUser(ctx, "u-3", dashboardapi.UserInput{Phone: "+84 90 000 0000"})
				return err
			},
			method: http.MethodPut,
			path:   "/api/users/u-3",
			body:   map[string]any{"phone": "+84 90 000 0000"},
		},
		{
			name:  "create location",
			reply: dashboardapi.Location{ID: "l-1", Name: "Hoan Kiem Lake"},
			call: func(c *dashboardapi.Client) error {
				_, err := c.CreateLocation(ctx, dashboardapi.LocationInput{Name: "Hoan Kiem Lake", LocationType: "landmark", Amenities: []string{"wifi"}})
				return err
			},
			method: http.MethodPost,
			path:   "/api/locations",
			body:   map[string]any{"name": "Hoan Kiem Lake", "locationType": "landmark", "amenities": []any{"wifi"}},
		},
		{
			name:  "update location",
			reply: dashboardapi.Location{ID: "l-1"},
			call: func(c *dashboardapi.Client) error {
				_, err := c.UpdateLocation(ctx, "l-1", dashboardapi.LocationInput{Address: "Hanoi"})
				return err
			},
			method: http.MethodPatch,
			path:   "/api/locations/l-1",
			body:   map[string]any{"address": "Hanoi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, rec := setupRecordingFixture(t, tt.reply)

			require.NoError(t, tt.call(f.client))
			require.Equal(t, tt.method, rec.method)
			require.Equal(t, tt.path, rec.path)
			require.Equal(t, "application/json", rec.contentType)
			require.Equal(t, tt.body, rec.body)
			require.Equal(t, "Bearer A", f.lastAuth)
		})
	}
}

func TestClient_ListTourParticipants(t *testing.T) {
	f, rec := setupRecordingFixture(t, map[string]any{
		"data": []dashboardapi.TourParticipant{
			{ID: "p-1", TourID: "t-1", UserID: "u-1", User: dashboardapi.ParticipantUser{FullName: "Ops Admin"}},
		},
	})

	participants, err := f.client.ListTourParticipants(context.Background(), "t-1")
	require.NoError(t, err)
	require.Equal(t, http.MethodGet, rec.method)
	require.Equal(t, "/api/tours/t-1/participants", rec.path)
	require.Len(t, participants, 1)
	require.Equal(t, "Ops Admin", participants[0].User.FullName)
}

func TestClient_MutationErrors(t *testing.T) {
	t.Run("missing id is refused locally", func(t *testing.T) {
		f, rec := setupRecordingFixture(t, nil)

		_, err := f.client.UpdateTour(context.Background(), "", dashboardapi.TourInput{Title: "x"})
		require.ErrorIs(t, err, apperrors.ErrNotFound)
		require.Empty(t, rec.method)
	})

	t.Run("validation error carries the server message", func(t *testing.T) {
		f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			writeJSON(w, map[string]string{"message": "title is required"})
		})

		_, err := f.client.CreateTour(context.Background(), dashboardapi.TourInput{})
		var apiErr *authapi.AuthError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
		require.Equal(t, "title is required", apiErr.Message)
		require.ErrorIs(t, err, apperrors.ErrRejected)
	})

	t.Run("unauthorized mutation logs out", func(t *testing.T) {
		f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		err := f.client.AssignParticipants(context.Background(), "t-1", nil)
		require.ErrorIs(t, err, apperrors.ErrTokenRejected)
		require.Equal(t, 1, f.unauthorized)
	})
}

func TestClient_NoSession(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := dashboardapi.New(srv.URL, tokenSourceFunc(func() (*oauth2.Token, error) {
		return nil, apperrors.ErrNotAuthenticated
	}))

	_, err := client.ListTours(context.Background(), dashboardapi.ListQuery{})
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	require.False(t, called)
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

func TestPaginate(t *testing.T) {
	items := []string{"alpha", "beta", "gamma"}
	match := func(s, term string) bool { return s == term }

	page := dashboardapi.Paginate(items, dashboardapi.ListQuery{PageSize: 2}, match)
	require.Equal(t, []string{"alpha", "beta"}, page.Items)
	require.Equal(t, 2, page.TotalPages)

	page = dashboardapi.Paginate(items, dashboardapi.ListQuery{Search: "gamma"}, match)
	require.Equal(t, []string{"gamma"}, page.Items)
	require.Equal(t, 1, page.TotalPages)

	page = dashboardapi.Paginate([]string(nil), dashboardapi.ListQuery{}, match)
	require.Empty(t, page.Items)
	require.Equal(t, 0, page.TotalPages)
}

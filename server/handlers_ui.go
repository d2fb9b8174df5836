package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/tripsync-admin/dashboardapi"
	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
)

// ListPageData is the model for the collection pages.
type ListPageData[T any] struct {
	Page   dashboardapi.Page[T]
	Search string
	Pages  []int
}

// DashboardData summarises the collections on the dashboard.
type DashboardData struct {
	Tours     int
	Users     int
	Locations int
}

func listQuery(r *http.Request) dashboardapi.ListQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	return dashboardapi.ListQuery{
		Page:     page,
		PageSize: dashboardapi.DefaultPageSize,
		Search:   q.Get("search"),
	}
}

func listData[T any](page dashboardapi.Page[T], q dashboardapi.ListQuery) ListPageData[T] {
	pages := make([]int, 0, page.TotalPages)
	for i := 1; i <= page.TotalPages; i++ {
		pages = append(pages, i)
	}
	return ListPageData[T]{Page: page, Search: q.Search, Pages: pages}
}

// DashboardHandler renders the landing page for signed in users.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, ok := s.protectedSession(w, r)
		if !ok {
			return
		}

		ctx := r.Context()
		var data DashboardData
		var firstErr error
		count := func(total int, err error) int {
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return total
		}
		tours, err := ps.dashboard.ListTours(ctx, dashboardapi.ListQuery{})
		data.Tours = count(tours.Total, err)
		usersPage, err := ps.dashboard.ListUsers(ctx, dashboardapi.ListQuery{})
		data.Users = count(usersPage.Total, err)
		locations, err := ps.dashboard.ListLocations(ctx, dashboardapi.ListQuery{})
		data.Locations = count(locations.Total, err)

		if s.sessionExpired(w, r, ps) {
			return
		}
		s.render(w, http.StatusOK, "dashboard.html", PageData{
			Title:  "Dashboard",
			Active: RouteDashboard,
			User:   ps.user,
			Error:  errorText(firstErr),
			Data:   data,
		})
	}
}

func (s *Server) ToursListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, ok := s.protectedSession(w, r)
		if !ok {
			return
		}
		q := listQuery(r)
		page, err := ps.dashboard.ListTours(r.Context(), q)
		if s.sessionExpired(w, r, ps) {
			return
		}
		s.render(w, http.StatusOK, "tours.html", PageData{
			Title:  "Tours",
			Active: RouteTours,
			User:   ps.user,
			Error:  errorText(err),
			Notice: r.URL.Query().Get("notice"),
			Data:   listData(page, q),
		})
	}
}

func (s *Server) TourDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, ok := s.protectedSession(w, r)
		if !ok {
			return
		}
		tour, err := ps.dashboard.GetTour(r.Context(), chi.URLParam(r, "id"))
		if s.sessionExpired(w, r, ps) {
			return
		}
		if err != nil {
			status := http.StatusBadGateway
			if apperrors.Is(err, apperrors.ErrNotFound) {
				status = http.StatusNotFound
			}
			s.render(w, status, "tour.html", PageData{Title: "Tour", Active: RouteTours, User: ps.user, Error: errorText(err)})
			return
		}
		s.render(w, http.StatusOK, "tour.html", PageData{Title: tour.Title, Active: RouteTours, User: ps.user, Data: tour})
	}
}

func (s *Server) UsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, ok := s.protectedSession(w, r)
		if !ok {
			return
		}
		q := listQuery(r)
		page, err := ps.dashboard.ListUsers(r.Context(), q)
		if s.sessionExpired(w, r, ps) {
			return
		}
		s.render(w, http.StatusOK, "users.html", PageData{
			Title:  "Users",
			Active: RouteUsers,
			User:   ps.user,
			Error:  errorText(err),
			Notice: r.URL.Query().Get("notice"),
			Data:   listData(page, q),
		})
	}
}

func (s *Server) LocationsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, ok := s.protectedSession(w, r)
		if !ok {
			return
		}
		q := listQuery(r)
		page, err := ps.dashboard.ListLocations(r.Context(), q)
		if s.sessionExpired(w, r, ps) {
			return
		}
		s.render(w, http.StatusOK, "locations.html", PageData{
			Title:  "Locations",
			Active: RouteLocations,
			User:   ps.user,
			Error:  errorText(err),
			Notice: r.URL.Query().Get("notice"),
			Data:   listData(page, q),
		})
	}
}

func (s *Server) TourDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteTours, "Tour deleted", func(ctx context.Context, c *dashboardapi.Client, id string) error {
		return c.DeleteTour(ctx, id)
	})
}

func (s *Server) UserDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteUsers, "User deleted", func(ctx context.Context, c *dashboardapi.Client, id string) error {
		return c.DeleteUser(ctx, id)
	})
}

func (s *Server) LocationDeleteHandler() http.HandlerFunc {
	return s.deleteHandler(RouteLocations, "Location deleted", func(ctx context.Context, c *dashboardapi.Client, id string) error {
		return c.DeleteLocation(ctx, id)
	})
}

// deleteHandler runs del and returns to the list page with a notice or an error.
func (s *Server) deleteHandler(listPath, done string, del func(context.Context, *dashboardapi.Client, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, ok := s.protectedSession(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		err := del(r.Context(), ps.dashboard, id)
		if s.sessionExpired(w, r, ps) {
			return
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("id", id).Str("collection", listPath).Msg("Delete failed")
			redirectWithNotice(w, r, listPath, "notice", "Delete failed: "+errorText(err))
			return
		}
		redirectWithNotice(w, r, listPath, "notice", done)
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	if apperrors.Is(err, apperrors.ErrNetwork) {
		return "The API is unreachable. Showing no data."
	}
	return err.Error()
}

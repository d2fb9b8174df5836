package session

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"github.com/rs/zerolog"
)

// Outcome describes what a restoration run did.
type Outcome int

const (
	// OutcomeSkipped means there was no persistence layer to restore from.
	OutcomeSkipped Outcome = iota
	// OutcomeCleared means no token was found and the session was reset.
	OutcomeCleared
	// OutcomeAlreadyAuthenticated means the store was authenticated and left alone.
	OutcomeAlreadyAuthenticated
	// OutcomeRestored means the token was validated and the session rebuilt.
	OutcomeRestored
	// OutcomeRejected means validation failed and the session was logged out.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCleared:
		return "cleared"
	case OutcomeAlreadyAuthenticated:
		return "already-authenticated"
	case OutcomeRestored:
		return "restored"
	case OutcomeRejected:
		return "rejected"
	}
	return "unknown"
}

// Restorer reconciles persisted tokens with the Store once per client lifetime.
type Restorer struct {
	store   *Store
	once    sync.Once
	outcome Outcome
	logger  zerolog.Logger
}

func NewRestorer(store *Store) *Restorer {
	return &Restorer{
		store:  store,
		logger: store.logger.With().Str("component", "restore").Logger(),
	}
}

// Init runs Restore the first time it is called; later calls return the first outcome.
func (r *Restorer) Init(ctx context.Context) Outcome {
	r.once.Do(func() {
		r.outcome = r.Restore(ctx)
	})
	return r.outcome
}

// Restore validates whichever access token is persisted (cookie first, then
// the local copy) against the auth API. A valid token rebuilds the session
// and repairs the cookie layer if it had lost the token; an invalid one logs
// the session out. IsLoading is always false when Restore returns.
func (r *Restorer) Restore(ctx context.Context) Outcome {
	tokens := r.store.tokens
	if !tokens.Available() {
		return OutcomeSkipped
	}

	cookieToken, _ := tokens.CookieAccessToken()
	storedToken, _ := tokens.LocalAccessToken()
	accessToken := cookieToken
	if accessToken == "" {
		accessToken = storedToken
	}

	if accessToken == "" {
		r.logger.Debug().Msg("No persisted token, clearing session")
		r.store.replace(State{})
		return OutcomeCleared
	}

	if r.store.State().IsAuthenticated {
		return OutcomeAlreadyAuthenticated
	}

	r.store.update(func(st *State) {
		st.IsLoading = true
	})

	user, err := r.store.api.GetCurrentUser(ctx, accessToken)
	if err == nil && user == nil {
		err = apperrors.ErrNotAuthenticated
	}
	if err != nil {
		r.logger.Warn().Err(err).Msg("Persisted token rejected, logging out")
		r.store.Logout()
		r.store.update(func(st *State) {
			st.IsLoading = false
		})
		return OutcomeRejected
	}

	if repaired, err := tokens.Sync(); err != nil {
		r.logger.Err(err).Msg("Failed to repair token layers")
	} else if repaired {
		r.logger.Debug().Msg("Token layers repaired")
	}

	r.store.replace(State{
		User:            user,
		Token:           accessToken,
		IsAuthenticated: true,
	})
	r.logger.Info().Str("user_id", user.ID).Msg("Session restored")
	return OutcomeRestored
}

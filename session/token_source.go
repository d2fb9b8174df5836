package session

import (
	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"github.com/jrsteele09/tripsync-admin/token"
	"golang.org/x/oauth2"
)

// TokenSource exposes the session's current access token to oauth2 transports.
// It reads the store on every call, so a login or logout takes effect on the
// next request. Wrap it in oauth2.Transport directly; oauth2.ReuseTokenSource
// would pin a stale token across session changes.
func (s *Store) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: s}
}

type storeTokenSource struct {
	store *Store
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	st := ts.store.State()
	if st.Token == "" {
		return nil, apperrors.ErrNotAuthenticated
	}
	t := &oauth2.Token{AccessToken: st.Token, TokenType: "Bearer"}
	if exp, ok := token.ExpiryOf(st.Token); ok {
		t.Expiry = exp
	}
	return t, nil
}

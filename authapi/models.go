package authapi

import (
	"github.com/jrsteele09/tripsync-admin/token"
	"github.com/jrsteele09/tripsync-admin/users"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	User   *users.User `json:"user"`
	Tokens token.Pair  `json:"tokens"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// errorBody is the shape of a non-2xx response body.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

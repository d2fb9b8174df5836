package config

type CookieConfig interface {
	GetSecureCookies() bool
}

type Cookies struct{}

var _ CookieConfig = Cookies{}

// GetSecureCookies marks token cookies Secure outside development.
func (Cookies) GetSecureCookies() bool {
	return EnvVars{}.GetEnv() != "DEV"
}

package config

type CookieConfig interface {
	GetAuthCookieName() string
	GetUserCookieName() string
	GetWorkspaceCookieName() string
}

type Cookies struct{}

var _ CookieConfig = Cookies{}

func (Cookies) GetAuthCookieName() string {
	return GetEnv("AUTH_COOKIE_NAME", "grc_auth_session")
}

func (Cookies) GetUserCookieName() string {
	return GetEnv("USER_COOKIE_NAME", "grc_user_session")
}

func (Cookies) GetWorkspaceCookieName() string {
	return GetEnv("WORKSPACE_COOKIE_NAME", "grc_workspace_session")
}

package server

const (
	RouteHealth      = "/healthz"
	RouteAuthLogin   = "/auth/login"
	RouteAuthLogout  = "/auth/logout"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthSession = "/auth/session"
	RouteWorkspace   = "/workspace"
	RouteMe          = "/me"
)

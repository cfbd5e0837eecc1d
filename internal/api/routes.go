package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/about"

	SessionParent = "/v1/session/"
	LoginRoute    = SessionParent + "login"
	MeRoute       = SessionParent + "me"
)

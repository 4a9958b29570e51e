package handler

import (
	"takeapp/internal/app/profile"
	"takeapp/internal/app/session"
	"takeapp/internal/configs"
)

// AppDeps bundles the collaborators the HTTP layer hands to screens and
// auth endpoints.
type AppDeps struct {
	Config       *configs.AppConfig
	Sessions     session.Store
	Profiles     profile.Store
	Objects      profile.ObjectStore
	OIDC         *session.OIDCProvider
	SignInStates *session.SignInStates
}

/*
Package handler provides the HTTP surface: sign-in endpoints, the OAuth
callback, and the WebSocket screen host.
*/
package handler

import (
	"net/http"
	"strings"

	"takeapp/internal/app/nav"
	"takeapp/internal/app/screens"
	"takeapp/internal/pkg/auth/token"
	"takeapp/internal/pkg/errs"
	"takeapp/internal/pkg/logx"
	"takeapp/internal/pkg/req"
	"takeapp/internal/pkg/resp"
)

// SignInInput is the JSON body of the sign-in initiation request.
type SignInInput struct {
	Next string `json:"next"`
}

// HandleSignIn starts the external credential exchange: it issues a state
// token bound to the post-sign-in destination and returns the provider's
// authorization URL for the browser to visit.
func HandleSignIn(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SignInInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		next := sanitizeNext(input.Next)

		state, err := deps.SignInStates.Issue(screens.GoogleProviderID, next)
		if err != nil {
			logx.Error(err, "failed to issue sign-in state")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"authUrl": deps.OIDC.AuthCodeURL(state),
		})
	}
}

// HandleAuthCallback finishes the external credential exchange. On success
// the sign-in is remembered, the browser gets its session cookie, and the
// visitor lands on the destination the sign-in was started for.
func HandleAuthCallback(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		next, ok := deps.SignInStates.Consume(query.Get("state"))
		if !ok {
			logx.Warn("auth callback with unknown or expired state")
			resp.RespondError(w, r, errs.NewError(errs.ErrSignInStateInvalid))
			return
		}

		code := query.Get("code")
		if code == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrSignInStateInvalid))
			return
		}

		remembered, err := deps.OIDC.Exchange(r.Context(), code)
		if err != nil {
			logx.Error(err, "provider code exchange failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrSignInExchangeFailed))
			return
		}

		if err := deps.Sessions.Save(r.Context(), remembered); err != nil {
			logx.Error(err, "failed to remember sign-in", "user_id", remembered.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		payload := &token.Payload{
			UserID: remembered.UserID,
			Email:  remembered.Email,
		}

		tokenString, err := token.Generate(payload, deps.Config.CookieSecret, token.SessionExpiration)
		if err != nil {
			logx.Error(err, "failed to mint session cookie", "user_id", remembered.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		http.SetCookie(w, sessionCookie(deps, tokenString, int(token.SessionExpiration.Seconds())))

		http.Redirect(w, r, next, http.StatusSeeOther)
	}
}

// HandleSignOut ends the session server-side and clears the cookie. Signing
// out while anonymous succeeds trivially.
func HandleSignOut(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := token.GetPayloadFromContext(r); payload != nil {
			if err := deps.Sessions.Delete(r.Context(), payload.UserID); err != nil {
				logx.Error(err, "failed to delete remembered sign-in", "user_id", payload.UserID)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
		}

		http.SetCookie(w, sessionCookie(deps, "", -1))

		resp.RespondSuccess(w, r, nil)
	}
}

// sessionCookie builds the session cookie with the right scope and security
// attributes for the environment.
func sessionCookie(deps *AppDeps, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     token.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   deps.Config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
	}
}

// sanitizeNext keeps post-sign-in destinations inside the application.
func sanitizeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return nav.WelcomePath
	}
	return next
}

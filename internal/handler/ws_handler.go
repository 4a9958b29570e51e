package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"takeapp/internal/app/screens"
	"takeapp/internal/app/session"
	"takeapp/internal/pkg/auth/token"
	"takeapp/internal/pkg/errs"
	"takeapp/internal/pkg/limiter"
	"takeapp/internal/pkg/logx"
	"takeapp/internal/pkg/resp"
)

// HandleScreenSocket creates an HTTP HandlerFunc that upgrades the request
// to a WebSocket and starts the screen host for the connection. The session
// cookie, when present and valid, seeds the connection's session hydration.
func HandleScreenSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("Screen socket rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		userIDHint := ""
		if payload := token.GetPayloadFromContext(r); payload != nil {
			userIDHint = payload.UserID
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		oracle := session.NewConnectionOracle(r.Context(), userIDHint, deps.Sessions, deps.OIDC, deps.SignInStates)

		host := screens.NewHost(conn, oracle, screens.HostConfig{
			Profiles:    deps.Profiles,
			Objects:     deps.Objects,
			GraceWindow: deps.Config.GuardGraceWindow,
			NavDelay:    deps.Config.SuccessNavDelay,
		}, userIDHint)

		go host.WritePump()

		logx.Info("Screen socket established", "user_id_hint", userIDHint)

		host.ReadPump()
	}
}

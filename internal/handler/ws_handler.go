/*
Package handler provides the HTTP handler for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, responsible for rate limiting, the
authentication handshake against the usertoken cookie, upgrading the HTTP connection
to WebSocket, and starting the client lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"dmchat/internal/app/chat"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/limiter"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
//
// The handshake extracts the signed credential from the usertoken cookie. A missing
// or invalid credential never rejects the connection: it proceeds unauthenticated,
// appears in presence snapshots with null identity, and its messages persist with a
// null sender.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		var identity *chat.Identity
		if cookie, err := r.Cookie(jwt.CookieName); err == nil && cookie.Value != "" {
			claims, err := deps.Verifier.Verify(cookie.Value)
			if err != nil {
				logx.Warn("WebSocket handshake: credential rejected, proceeding unauthenticated", "error", err)
			} else {
				identity = &chat.Identity{ID: claims.ID, UserName: claims.UserName}
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, deps.Relay, conn, identity)

		go client.WritePump()

		deps.Hub.Register(client)

		client.ReadPump()
	}
}

/*
Package handler provides the HTTP handler for conversation history retrieval.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/resp"
)

// HandleConversation returns all messages exchanged between the authenticated
// caller and the user named in the URL, oldest first.
func HandleConversation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := jwt.GetClaimsFromContext(r)
		if claims == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		peerID := chi.URLParam(r, "userId")
		if peerID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrConversationPeerInvalid))
			return
		}

		messages, err := deps.Messages.Conversation(r.Context(), claims.ID, peerID)
		if err != nil {
			logx.Error(err, "failed to load conversation", "user_id", claims.ID, "peer_id", peerID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
		})
	}
}

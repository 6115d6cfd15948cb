/*
Package handler provides the HTTP handler for listing registered users.
*/
package handler

import (
	"net/http"

	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/resp"
)

// HandlePeople returns the public summaries of all registered users, used by
// clients to populate the contact list alongside live presence.
func HandlePeople(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := deps.Users.List(r.Context())
		if err != nil {
			logx.Error(err, "failed to list users")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"people": users,
		})
	}
}

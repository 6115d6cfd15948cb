package handler

import (
	"dmchat/internal/app/chat"
	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
	"dmchat/internal/configs"
	"dmchat/internal/pkg/auth/jwt"
)

// AppDeps bundles the collaborators the HTTP handlers depend on. Stores are
// interfaces so tests can substitute in-memory fakes.
type AppDeps struct {
	Config   *configs.AppConfig
	Hub      *chat.Hub
	Relay    *chat.Relay
	Verifier jwt.Verifier
	Users    user.Store
	Messages message.Store
}

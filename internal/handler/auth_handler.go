/*
Package handler provides HTTP handler functions for user authentication and session management.
*/
package handler

import (
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"dmchat/internal/app/db"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/randx"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// setIdentityCookie attaches the signed identity token as an httpOnly cookie.
func setIdentityCookie(w http.ResponseWriter, deps *AppDeps, token string) {
	secure := deps.Config.Environment != "development"

	cookie := &http.Cookie{
		Name:     jwt.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(jwt.UserIdentityExpiration),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		// Cross-site frontends need the cookie on credentialed requests.
		cookie.SameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, cookie)
}

type RegisterInput struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// HandleRegister processes the request to create a new user account.
// On success it issues an identity token and sets the usertoken cookie.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !usernameRegex.MatchString(input.UserName) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 6 || passwordLen > 50 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		newUser := user.User{
			ID:           randx.UserID(),
			UserName:     input.UserName,
			PasswordHash: string(hashedPassword),
		}

		if err := deps.Users.Create(r.Context(), newUser); err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("registration conflict: username already exists", "username", input.UserName)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user in database")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		tokenString, err := jwt.GenerateToken(newUser.ID, newUser.UserName, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "failed to generate token after registration")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		setIdentityCookie(w, deps, tokenString)

		resp.RespondSuccess(w, r, map[string]any{
			"user": user.Summary{ID: newUser.ID, UserName: newUser.UserName},
		})
	}
}

type LoginInput struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// HandleLogin verifies user credentials and issues an identity token. A failed
// password check returns invalid-credentials before any token is minted.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		dbUser, err := deps.Users.ByUserName(r.Context(), input.UserName)
		if err != nil {
			if !db.IsNotFound(err) {
				logx.Error(err, "login: user fetch failed", "username", input.UserName)
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "username", input.UserName)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		tokenString, err := jwt.GenerateToken(dbUser.ID, dbUser.UserName, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "login: jwt generation failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		setIdentityCookie(w, deps, tokenString)

		resp.RespondSuccess(w, r, map[string]any{
			"user": user.Summary{ID: dbUser.ID, UserName: dbUser.UserName},
		})
	}
}

// HandleLogout clears the identity cookie.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     jwt.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleProfile returns the identity claims carried by the usertoken cookie,
// or a null user when the request is anonymous.
func HandleProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := jwt.GetClaimsFromContext(r)
		if claims == nil {
			resp.RespondSuccess(w, r, nil)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": user.Summary{ID: claims.ID, UserName: claims.UserName},
		})
	}
}

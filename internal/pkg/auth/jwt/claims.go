package jwt

import "github.com/golang-jwt/jwt"

// Claims defines the structure of the JSON Web Token (JWT) claims for DM Chat.
// It includes standard claims required by the JWT specification and the custom
// claims that identify a user within the chat system.
type Claims struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the opaque identifier of the user account the token was issued for.
	ID string `json:"id"`

	// UserName is the display name of the user, carried so live connections can
	// surface it in presence snapshots without a database round trip.
	UserName string `json:"userName"`
}

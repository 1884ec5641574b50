package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims carried by seat-booking identity tokens.
// It includes the standard claims required by the JWT specification and the
// custom claims the notification layer needs to derive channel membership
// and ownership filters.
type Payload struct {
	// StandardClaims embeds the standard JWT fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer), used for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the unique identifier of the account the token was issued for.
	ID string `json:"id"`

	// Role is the account role: "admin", "librarian", or "user".
	Role string `json:"role"`

	// LibraryID scopes librarian accounts to a single library. Empty for
	// other roles.
	LibraryID string `json:"libraryId,omitempty"`
}

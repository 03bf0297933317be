package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the JWT payload verified by the bearer-token middleware
// gating privileged scheduling endpoints. Issuance is out of scope; only
// verification of already-issued tokens happens in this repository.
type AccessClaims struct {
	Subject string         `json:"sub"`
	Role    InstructorRole `json:"role"`
	jwt.RegisteredClaims
}

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CentralAudience is the required `aud` claim on every service token (spec §4.B).
const CentralAudience = "central-service"

// Config holds token issuance/verification parameters. Algorithm is kept as a
// field (not hardcoded) because it's operator-configured via JWT_ALGORITHM,
// even though HS256 is the only one wired up.
type Config struct {
	Secret     string
	Algorithm  string
	TokenTTL   time.Duration
}

// DefaultConfig returns the spec's default TTL (15 minutes) for a given secret.
func DefaultConfig(secret string) Config {
	return Config{
		Secret:    secret,
		Algorithm: "HS256",
		TokenTTL:  15 * time.Minute,
	}
}

// Claims is the token payload minted by the Token Issuer (spec §4.A):
// `{iss=service_name, sub=service_name, role, exp, aud="central-service"}`.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenPair is the Token Issuer's output (spec §4.A).
type TokenPair struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   time.Time
}

package configs

import "time"

// Auth configures how callers prove which address they act as. Secret
// signs and verifies HS256 bearer tokens. InsecureHeader additionally
// trusts the X-Principal header and must only be enabled in development.
type Auth struct {
	Secret         string        `env:"SECRET"`
	Issuer         string        `env:"ISSUER" envDefault:"crowdfund"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	InsecureHeader bool          `env:"INSECURE_HEADER" envDefault:"false"`
}

package auth

import "time"

// Config holds password sign-in settings.
type Config struct {
	GuestEmail    string `env:"AUTH_GUEST_EMAIL" envDefault:"guest@gmail.com"`
	GuestPassword string `env:"AUTH_GUEST_PASSWORD" envDefault:"guest123"`
	BcryptCost    int    `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// GoogleConfig holds configuration for Google sign-in.
type GoogleConfig struct {
	ClientID     string        `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string        `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string        `env:"GOOGLE_OAUTH_REDIRECT_URL"`
	Scopes       []string      `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,https://www.googleapis.com/auth/userinfo.email"`
	StateTTL     time.Duration `env:"GOOGLE_OAUTH_STATE_TTL" envDefault:"10m"`
}

// Enabled reports whether Google sign-in is configured.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

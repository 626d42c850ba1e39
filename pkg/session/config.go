package session

import "time"

type Config struct {
	CookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"summarist_session"`
	SecureCookies bool          `env:"SESSION_SECURE_COOKIES" envDefault:"true"`
	AnonymousTTL  time.Duration `env:"SESSION_ANONYMOUS_TTL" envDefault:"24h"`
	// AuthenticatedTTL applies once an identity is bound to the session.
	AuthenticatedTTL time.Duration `env:"SESSION_AUTHENTICATED_TTL" envDefault:"720h"`
	// Activity writes are skipped when the last one is more recent than this.
	ActivityThreshold time.Duration `env:"SESSION_ACTIVITY_THRESHOLD" envDefault:"5m"`
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{
		CookieName:        "summarist_session",
		SecureCookies:     true,
		AnonymousTTL:      24 * time.Hour,
		AuthenticatedTTL:  30 * 24 * time.Hour,
		ActivityThreshold: 5 * time.Minute,
	}
}

func (c Config) ttl(authenticated bool) time.Duration {
	if authenticated {
		return c.AuthenticatedTTL
	}
	return c.AnonymousTTL
}

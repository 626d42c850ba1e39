package subscription

import "time"

// Config holds billing and subscription settings.
type Config struct {
	ResolveTimeout  time.Duration `env:"SUBSCRIPTION_RESOLVE_TIMEOUT" envDefault:"10s"`
	CheckoutTimeout time.Duration `env:"CHECKOUT_TIMEOUT" envDefault:"30s"`
	PlansFile       string        `env:"PLANS_FILE"`
	BaseURL         string        `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	SuccessPath     string        `env:"CHECKOUT_SUCCESS_PATH" envDefault:"/for-you"`
	CancelPath      string        `env:"CHECKOUT_CANCEL_PATH" envDefault:"/choose-plan"`
	PortalReturn    string        `env:"PORTAL_RETURN_PATH" envDefault:"/settings"`
	WorkerCount     int           `env:"CHECKOUT_WORKERS" envDefault:"4"`
}

// PaddleConfig holds configuration for the Paddle billing provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"sandbox"`
}

// Enabled reports whether Paddle credentials are present.
func (c PaddleConfig) Enabled() bool {
	return c.APIKey != "" && c.WebhookSecret != ""
}

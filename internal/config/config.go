package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server    ServerConfig    `env:",prefix=SERVER_"`
	Supabase  SupabaseConfig  `env:",prefix=SUPABASE_"`
	Weather   WeatherConfig   `env:",prefix=OPENWEATHER_"`
	Profile   ProfileConfig   `env:",prefix=PROFILE_"`
	Shell     ShellConfig     `env:",prefix=SHELL_"`
	Analytics AnalyticsConfig `env:",prefix=ANALYTICS_"`
	Security  SecurityConfig  `env:",prefix="`
	CORS      CORSConfig      `env:",prefix=CORS_"`
	StatePath string          `env:"STATE_PATH,default=.elakbay/state.json"`
	Env       string          `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type SupabaseConfig struct {
	URL     string `env:"URL,default="`
	AnonKey string `env:"ANON_KEY,default="`
	// RedirectOrigin is the callback target used by OAuth redirect flows.
	RedirectOrigin string `env:"REDIRECT_ORIGIN,default=http://localhost:8080"`
}

type WeatherConfig struct {
	APIKey   string   `env:"API_KEY,default="`
	BaseURL  string   `env:"BASE_URL,default=https://api.openweathermap.org/data/2.5/weather"`
	CacheTTL Duration `env:"CACHE_TTL,default=10m"`
	Province string   `env:"PROVINCE,default=Ilocos Sur"`
	Country  string   `env:"COUNTRY,default=PH"`
}

type ProfileConfig struct {
	FetchAttempts int      `env:"FETCH_ATTEMPTS,default=4"`
	FetchDelay    Duration `env:"FETCH_DELAY,default=250ms"`
}

type ShellConfig struct {
	AnchorPollDelay    Duration `env:"ANCHOR_POLL_DELAY,default=120ms"`
	AnchorPollAttempts int      `env:"ANCHOR_POLL_ATTEMPTS,default=10"`
	ScrollTopThreshold int      `env:"SCROLL_TOP_THRESHOLD,default=640"`
}

type AnalyticsConfig struct {
	PrivatePrefixes []string `env:"PRIVATE_PREFIXES,default=/dashboard,/admin"`
}

type SecurityConfig struct {
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// Configured reports whether the hosted backend credentials are present.
// Absence is not an error; the session layer degrades to signed-out.
func (s SupabaseConfig) Configured() bool {
	return s.URL != "" && s.AnonKey != ""
}

// Configured reports whether a weather API key is present. Weather calls
// fail individually when it is missing.
func (w WeatherConfig) Configured() bool {
	return w.APIKey != ""
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if config.Profile.FetchAttempts < 1 {
		return nil, fmt.Errorf("PROFILE_FETCH_ATTEMPTS must be at least 1")
	}
	if config.Shell.AnchorPollAttempts < 1 {
		return nil, fmt.Errorf("SHELL_ANCHOR_POLL_ATTEMPTS must be at least 1")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}

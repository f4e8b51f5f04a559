package config

import "time"

// Store kinds accepted by StoreKind.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Backend kinds accepted by Backend.
const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// Default models per backend.
const (
	DefaultOpenAIModel = "llama-3.3-70b"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// Config holds runtime settings for otvetbot.
//
// Units: PollInterval and RequestTimeout are time.Duration values;
// RequestsPerSecond bounds calls to the Q&A platform.
type Config struct {
	// StorePath is the credential store location (file or sqlite database).
	StorePath string
	// StoreKind selects the credential store backend: StoreJSON or StoreSQLite.
	StoreKind string
	// StorePassphrase, when set, encrypts session tokens at rest.
	StorePassphrase string

	PlatformURL       string
	PollInterval      time.Duration
	RequestTimeout    time.Duration
	RequestsPerSecond float64

	// Backend selects the completion client: BackendOpenAI or BackendGemini.
	Backend         string
	BackendURL      string
	BackendProvider string
	Model           string
	APIKey          string
	Language        string
	WebSearch       bool

	// EnrollMaxAttempts bounds enrollment retries; zero means unbounded.
	EnrollMaxAttempts int

	Verbose bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StorePath = "accounts.json"
	c.StoreKind = StoreJSON
	c.PlatformURL = "https://otvet.mail.ru"
	c.PollInterval = 10 * time.Second
	c.RequestTimeout = 60 * time.Second
	c.RequestsPerSecond = 2
	c.Backend = BackendOpenAI
	c.BackendURL = "http://localhost:1337/v1"
	c.BackendProvider = "Blackbox"
	c.Model = DefaultOpenAIModel
	c.Language = "Russian"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if -c/-config is given), the environment and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	cfg.applyBackendDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyBackendDefaults replaces a model left at the OpenAI default when
// another backend is selected.
func (c *Config) applyBackendDefaults() {
	if c.Backend == BackendGemini && (c.Model == "" || c.Model == DefaultOpenAIModel) {
		c.Model = DefaultGeminiModel
	}
}

// Package config holds the run configuration for trendsearch.
// Values come from defaults, an optional YAML file, the environment
// (including a .env file) and finally command-line flags.
package config

import (
	"net/url"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultStorageStatePath  = "./.storageState.json"
	DefaultScreenshotPath    = "./out/error.png"
	DefaultDelay             = 222 * time.Millisecond
	DefaultTimeout           = 15 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSlowMotion        = 300 * time.Millisecond
	DefaultInitialQuery      = "today"
	DefaultTrendSelector     = "input.trend-word"
	DefaultUserSelector      = `input[name="u"]`
	DefaultPasswordSelector  = `input[name="p"]`
	DefaultSubmitSelector    = `input[name="submit"]`
	DefaultLogLevel          = "info"
)

// DefaultSearchWords is used when SEARCH_WORDS is not set.
var DefaultSearchWords = []string{"test"}

// Credentials are the login form values.
type Credentials struct {
	ID       string `yaml:"user_id"`
	Password string `yaml:"password"`
}

// Config is passed explicitly to every component of a run.
type Config struct {
	// PageURL is the base page. Search terms are appended to it.
	PageURL string `yaml:"page_url"`

	Credentials Credentials `yaml:",inline"`

	// SearchWords seeds the candidate queue.
	SearchWords []string `yaml:"search_words"`

	// LoginSelector is the login trigger, LoggedInSelector the element
	// that only exists for an authenticated user.
	LoginSelector    string `yaml:"login_selector"`
	LoggedInSelector string `yaml:"logged_in_selector"`

	UserSelector     string `yaml:"user_selector"`
	PasswordSelector string `yaml:"password_selector"`
	SubmitSelector   string `yaml:"submit_selector"`
	VerifyLogin      bool   `yaml:"verify_login"`

	TrendSelector string `yaml:"trend_selector"`
	InitialQuery  string `yaml:"initial_search"`

	StorageStatePath string `yaml:"storage_state_path"`
	ScreenshotPath   string `yaml:"screenshot_path"`

	Headless   bool          `yaml:"headless"`
	SlowMotion time.Duration `yaml:"-"`
	ProxyURL   string        `yaml:"proxy"`

	// Delay is the pause between typed characters.
	Delay time.Duration `yaml:"-"`
	// Timeout bounds the login race and the trend-word wait.
	Timeout           time.Duration `yaml:"-"`
	NavigationTimeout time.Duration `yaml:"-"`

	LogLevel string `yaml:"log_level"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		SearchWords:       append([]string(nil), DefaultSearchWords...),
		UserSelector:      DefaultUserSelector,
		PasswordSelector:  DefaultPasswordSelector,
		SubmitSelector:    DefaultSubmitSelector,
		TrendSelector:     DefaultTrendSelector,
		InitialQuery:      DefaultInitialQuery,
		StorageStatePath:  DefaultStorageStatePath,
		ScreenshotPath:    DefaultScreenshotPath,
		Headless:          true,
		SlowMotion:        DefaultSlowMotion,
		Delay:             DefaultDelay,
		Timeout:           DefaultTimeout,
		NavigationTimeout: DefaultNavigationTimeout,
		LogLevel:          DefaultLogLevel,
	}
}

// SetLoginSelectors parses the "trigger,indicator" pair. Only the first
// comma separates the two, so the indicator may be a selector list.
func (c *Config) SetLoginSelectors(pair string) error {
	trigger, indicator, ok := strings.Cut(pair, ",")
	trigger, indicator = strings.TrimSpace(trigger), strings.TrimSpace(indicator)
	if !ok || trigger == "" || indicator == "" {
		return ErrNoLoginSelector
	}
	c.LoginSelector = trigger
	c.LoggedInSelector = indicator
	return nil
}

// SetSearchWords replaces the seed list with the space-separated words.
func (c *Config) SetSearchWords(words string) {
	c.SearchWords = strings.Fields(words)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.PageURL == "" {
		return ErrNoPageURL
	}
	u, err := url.Parse(c.PageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidPageURL
	}

	if c.LoginSelector == "" || c.LoggedInSelector == "" {
		return ErrNoLoginSelector
	}

	if c.Timeout <= 0 || c.NavigationTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Delay < 0 || c.SlowMotion < 0 {
		return ErrInvalidDelay
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is loaded when present.
const DefaultEnvFile = ".env"

// Environment keys.
const (
	EnvPageURL           = "PAGEURL"
	EnvUserInfo          = "USERINFO"
	EnvUserID            = "USERID"
	EnvPassword          = "PASSWD"
	EnvSearchWords       = "SEARCH_WORDS"
	EnvLoginSelectors    = "LOGIN_SELECTER"
	EnvUserSelector      = "LOGIN_USER_SELECTOR"
	EnvPasswordSelector  = "LOGIN_PASSWORD_SELECTOR"
	EnvSubmitSelector    = "LOGIN_SUBMIT_SELECTOR"
	EnvVerifyLogin       = "VERIFY_LOGIN"
	EnvTrendSelector     = "TREND_SELECTOR"
	EnvInitialQuery      = "INITIAL_SEARCH"
	EnvStorageStatePath  = "STORAGESTATEPATH"
	EnvScreenshotPath    = "SCREENSHOT_PATH"
	EnvHeadless          = "HEADLESS"
	EnvSlowMotion        = "SLOWMO"
	EnvProxy             = "PROXY"
	EnvDelay             = "DELAY"
	EnvTimeout           = "TIMEOUT"
	EnvNavigationTimeout = "NAV_TIMEOUT"
	EnvLogLevel          = "LOG_LEVEL"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load builds a Config from defaults, the YAML file at path (if any),
// the env file and the process environment. Variables already present in
// the environment win over the env file. A missing env file is ignored.
func Load(envFile, path string) (*Config, error) {
	c := NewConfig()

	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile overlays the keys present in a YAML file onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // user supplied config path
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Durations follow the environment rules: a bare number is milliseconds.
	var durations map[string]yaml.Node
	if err := yaml.Unmarshal(data, &durations); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	fields := map[string]*time.Duration{
		"slow_motion":        &c.SlowMotion,
		"delay":              &c.Delay,
		"timeout":            &c.Timeout,
		"navigation_timeout": &c.NavigationTimeout,
	}
	for key, dst := range fields {
		node, ok := durations[key]
		if !ok {
			continue
		}
		if node.Kind != yaml.ScalarNode {
			return fmt.Errorf("invalid %s in %s: line %d: not a duration", key, path, node.Line)
		}
		d, err := parseMillis(node.Value)
		if err != nil {
			return fmt.Errorf("invalid %s %q in %s: %w", key, node.Value, path, err)
		}
		*dst = d
	}
	return nil
}

// ApplyEnv overlays every non-empty variable returned by lookup onto c.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get(EnvPageURL); ok {
		c.PageURL = v
	}

	// USERINFO is "id:password"; USERID/PASSWD override its halves.
	if v, ok := get(EnvUserInfo); ok {
		id, pw, _ := strings.Cut(v, ":")
		c.Credentials = Credentials{ID: id, Password: pw}
	}
	if v, ok := get(EnvUserID); ok {
		c.Credentials.ID = v
	}
	if v, ok := lookup(EnvPassword); ok && v != "" {
		c.Credentials.Password = v
	}

	if v, ok := get(EnvSearchWords); ok {
		c.SetSearchWords(v)
	}
	if v, ok := get(EnvLoginSelectors); ok {
		if err := c.SetLoginSelectors(v); err != nil {
			return err
		}
	}

	texts := map[string]*string{
		EnvUserSelector:     &c.UserSelector,
		EnvPasswordSelector: &c.PasswordSelector,
		EnvSubmitSelector:   &c.SubmitSelector,
		EnvTrendSelector:    &c.TrendSelector,
		EnvInitialQuery:     &c.InitialQuery,
		EnvStorageStatePath: &c.StorageStatePath,
		EnvScreenshotPath:   &c.ScreenshotPath,
		EnvProxy:            &c.ProxyURL,
		EnvLogLevel:         &c.LogLevel,
	}
	for key, dst := range texts {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	// Anything but "false" keeps the browser headless.
	if v, ok := get(EnvHeadless); ok {
		c.Headless = v != "false"
	}
	if v, ok := get(EnvVerifyLogin); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvVerifyLogin, v, err)
		}
		c.VerifyLogin = b
	}

	millis := map[string]*time.Duration{
		EnvDelay:             &c.Delay,
		EnvTimeout:           &c.Timeout,
		EnvNavigationTimeout: &c.NavigationTimeout,
		EnvSlowMotion:        &c.SlowMotion,
	}
	for key, dst := range millis {
		v, ok := get(key)
		if !ok {
			continue
		}
		d, err := parseMillis(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
	}

	return nil
}

// parseMillis accepts a bare millisecond count or a Go duration string.
func parseMillis(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trendsearch/internal/config"
	applog "trendsearch/internal/log"
	"trendsearch/internal/runner"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configFile    string
	envFile       string
	pageURL       string
	searchWords   string
	loginSelector string
	statePath     string
	delay         time.Duration
	timeout       time.Duration
	showUI        bool
	proxyURL      string
	verbose       bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "trendsearch [URL]",
		Short:   "Search a site repeatedly with the trend words it suggests",
		Version: version,
		Long: `trendsearch opens a browser on a search page, restores the saved login
session, logs in when the page asks for it, then keeps searching the trending
words the page shows until 10 distinct words have been searched. The session
is saved for the next run.

Settings are read from a .env file and the environment (PAGEURL, USERINFO,
SEARCH_WORDS, LOGIN_SELECTER, ...), optionally from a YAML file, and can be
overridden with flags.`,
		Example: `  # Everything from .env
  trendsearch

  # Override the page and seed words
  trendsearch --words "golang rust" "https://search.example.com/?q="

  # Watch the browser while it works
  trendsearch --showui --login-selector "a.login,a.logout"`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.Flags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Env file to load (missing file is ignored)")
	rootCmd.Flags().StringVar(&pageURL, "page-url", "", "Base page URL, search terms are appended (PAGEURL)")
	rootCmd.Flags().StringVarP(&searchWords, "words", "w", "", "Space-separated seed search words (SEARCH_WORDS)")
	rootCmd.Flags().StringVarP(&loginSelector, "login-selector", "s", "", "\"<login>,<logged-in>\" selector pair (LOGIN_SELECTER)")
	rootCmd.Flags().StringVar(&statePath, "state", "", "Session state file (STORAGESTATEPATH)")
	rootCmd.Flags().DurationVar(&delay, "delay", config.DefaultDelay, "Delay between typed characters (DELAY)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", config.DefaultTimeout, "Wait timeout for login and trend elements (TIMEOUT)")
	rootCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", "", "Proxy URL (e.g. http://127.0.0.1:7890) (PROXY)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile, configFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := applog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := applog.New(os.Stderr, level, cfg.Credentials.Password)
	logger.Info("starting",
		"page_url", cfg.PageURL,
		"state_path", cfg.StorageStatePath,
		"headless", cfg.Headless,
		"delay", cfg.Delay,
		"timeout", cfg.Timeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx, cfg, logger); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

// applyFlags overrides cfg with the flags given on the command line. The
// positional URL wins over --page-url.
func applyFlags(cmd *cobra.Command, cfg *config.Config, args []string) error {
	flags := cmd.Flags()

	if flags.Changed("page-url") {
		cfg.PageURL = pageURL
	}
	if len(args) == 1 {
		cfg.PageURL = args[0]
	}
	if flags.Changed("words") {
		cfg.SetSearchWords(searchWords)
	}
	if flags.Changed("login-selector") {
		if err := cfg.SetLoginSelectors(loginSelector); err != nil {
			return err
		}
	}
	if flags.Changed("state") {
		cfg.StorageStatePath = statePath
	}
	if flags.Changed("delay") {
		cfg.Delay = delay
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("showui") {
		cfg.Headless = !showUI
	}
	if flags.Changed("proxy") {
		cfg.ProxyURL = proxyURL
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return nil
}

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/storefront/internal/adapter"
	"github.com/mmcdole/storefront/internal/adapter/shopapi"
	"github.com/mmcdole/storefront/internal/domain"
	"github.com/mmcdole/storefront/internal/session"
	"github.com/mmcdole/storefront/internal/store"
	"github.com/mmcdole/storefront/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		clearCache  bool
		login       bool
		logout      bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&clearCache, "clear-cache", false, "delete the cached catalog and exit")
	flag.BoolVar(&login, "login", false, "sign in from the terminal and remember the session")
	flag.BoolVar(&logout, "logout", false, "forget the remembered session and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("storefront %s\n", Version)
		return
	}

	if err := run(clearCache, login, logout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(clearCache, login, logout bool) error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if clearCache {
		return runClearCache(cfg)
	}
	if logout {
		if err := adapter.ClearSession(); err != nil {
			return err
		}
		fmt.Println("✓ Signed out")
		return nil
	}

	// Setup logger
	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting storefront", "version", Version, "server", cfg.Server.URL)

	if !cfg.IsConfigured() {
		return fmt.Errorf("no server URL configured; set server.url or STOREFRONT_SERVER_URL")
	}

	opts := shopapi.DefaultOptions(cfg.Server.URL)
	if cfg.Server.Timeout > 0 {
		opts.Timeout = cfg.Server.Timeout
	}
	opts.RetryCount = cfg.Server.RetryCount
	client, err := shopapi.NewClient(opts, logger)
	if err != nil {
		return fmt.Errorf("failed to create store client: %w", err)
	}

	// A missing cache only costs the warm start
	var catalogStore domain.CatalogStore
	if cs, err := store.NewCatalogStore(adapter.GetCachePath(), cfg.Server.URL); err != nil {
		logger.Warn("catalog cache unavailable", "error", err)
	} else {
		defer cs.Close()
		catalogStore = cs
	}

	var sessionStore session.Store
	if cfg.Session.Remember {
		sessionStore = adapter.SessionStore{}
	}

	notes := make(chan domain.Notification, 32)
	notifier := tui.NewChannelNotifier(notes)
	sessions := session.NewManager(client, sessionStore, cfg.Admin.Usernames, notifier, logger)

	if login {
		return runLoginFlow(sessions)
	}

	if cfg.HasSession() {
		sessions.Restore(cfg.Session.Token, cfg.Session.Username, cfg.Session.IsAdmin)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("storefront needs an interactive terminal")
	}

	defaultSort, ok := domain.ParseSortOption(cfg.UI.DefaultSort)
	if !ok {
		logger.Warn("unknown default sort, using NONE", "value", cfg.UI.DefaultSort)
	}

	model := tui.NewModel(tui.Deps{
		Sessions: sessions,
		Connect: func(token string) tui.Backend {
			return client.WithToken(token)
		},
		Store:             catalogStore,
		Opener:            adapter.NewLauncher(cfg.UI.Browser, cfg.UI.BrowserArgs, logger),
		Notifications:     notes,
		Logger:            logger,
		NotificationDelay: cfg.UI.NotificationDelay,
		DefaultSort:       defaultSort,
		InspectorPercent:  cfg.UI.InspectorWidth,
	})

	// Run the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runClearCache wipes the configured server's catalog snapshot in place.
// Without a server, or when the cache can't be opened, the whole cache
// directory is removed.
func runClearCache(cfg *adapter.Config) error {
	if cfg.IsConfigured() {
		if cs, err := store.NewCatalogStore(adapter.GetCachePath(), cfg.Server.URL); err == nil {
			cs.InvalidateAll()
			if err := cs.Close(); err != nil {
				return fmt.Errorf("failed to close cache: %w", err)
			}
			fmt.Printf("✓ Cache cleared for %s\n", cfg.Server.URL)
			return nil
		}
	}
	if err := adapter.ClearCache(); err != nil {
		return err
	}
	fmt.Println("✓ Cache cleared")
	return nil
}

// runLoginFlow signs in from the terminal before the TUI starts
func runLoginFlow(sessions *session.Manager) error {
	fmt.Println()
	fmt.Println("Storefront sign in")
	fmt.Println("━━━━━━━━━━━━━━━━━━")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	// Prompt for password (hidden input)
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := sessions.Login(ctx, domain.Credentials{
		Username: strings.TrimSpace(username),
		Password: string(passwordBytes),
	})
	if err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}

	fmt.Println()
	fmt.Printf("✓ Signed in as %s\n", s.Username)
	if s.IsAdmin {
		fmt.Println("  Admin controls are enabled.")
	}
	fmt.Println()
	fmt.Println("Run storefront again to start the application.")
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pawchat/pawchat/internal/client"
	"github.com/pawchat/pawchat/internal/config"
	"github.com/pawchat/pawchat/internal/controller"
	"github.com/pawchat/pawchat/internal/session"
	"github.com/pawchat/pawchat/internal/tui"
)

// runChat starts the interactive chat (REPL) mode.
func runChat() error {
	cfg := initConfig()

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open session store:", err)
		os.Exit(1)
	}
	defer store.Close()

	repo := session.NewRepository(store)
	exch := client.New(cfg.ServerURL, time.Duration(cfg.RequestTimeoutSecs)*time.Second)

	if useTUI {
		uiCfg := tui.UIConfig{
			Version:     appVersion,
			ServerURL:   cfg.ServerURL,
			ShowWelcome: repo.Len() == 0,
		}
		return tui.RunUI(uiCfg, func(ctx context.Context, ui tui.UI) error {
			return controller.New(repo, exch, ui).Run(ctx)
		})
	}

	// Plain mode: Ctrl+C cancels any in-flight exchange and exits.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return controller.New(repo, exch, tui.NewPlainUI()).Run(ctx)
}

// openStore opens the configured session store, creating its directory
// when needed.
func openStore(cfg *config.Config) (*session.SQLiteStore, error) {
	path := cfg.StorePath
	if path == "" {
		var err error
		path, err = session.DefaultStorePath()
		if err != nil {
			return nil, err
		}
	}
	return session.NewSQLiteStore(path)
}

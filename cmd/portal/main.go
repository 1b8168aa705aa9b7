// Command portal is the terminal client for the Counsel legal
// services portal.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/counselhub/portal/internal/api"
	"github.com/counselhub/portal/internal/app"
	"github.com/counselhub/portal/internal/credential"
	"github.com/counselhub/portal/internal/events"
	"github.com/counselhub/portal/internal/model"
	"github.com/counselhub/portal/internal/realtime"
	"github.com/counselhub/portal/internal/session"
	"github.com/counselhub/portal/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "portal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	// The TUI owns the terminal; diagnostics go to a log file.
	logDir := filepath.Dir(*cfgPath)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	logFile, err := os.OpenFile(
		filepath.Join(logDir, "portal.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	cfg, err := model.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}

	bus := events.NewBus()

	kv, err := store.Open(filepath.Join(logDir, "portal.db"), bus)
	if err != nil {
		return err
	}
	defer kv.Close()

	sessions := session.NewManager(credential.Keyring{})
	client := api.NewClient(cfg.API.BaseURL, sessions)
	channel := realtime.New(cfg.Realtime.URL)

	// Another running instance toggling the theme rewrites the
	// config file; fan the change out on the bus.
	stopWatch, err := model.WatchConfig(*cfgPath, func(updated *model.AppConfig) {
		bus.Publish(events.ThemeChanged{Dark: updated.DarkMode()})
	})
	if err != nil {
		log.Printf("main: config watch unavailable: %v", err)
	} else {
		defer stopWatch()
	}

	p := tea.NewProgram(
		app.New(cfg, *cfgPath, kv, sessions, client, channel, bus),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

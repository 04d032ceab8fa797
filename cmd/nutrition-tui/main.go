// Command nutrition-tui is the terminal admin for the nutrition table.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/nutrition/internal/admin"
	"github.com/JonMunkholm/nutrition/internal/app"
	"github.com/JonMunkholm/nutrition/internal/application"
	"github.com/JonMunkholm/nutrition/internal/config"
	"github.com/JonMunkholm/nutrition/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	logFile, err := tea.LogToFile("nutrition-tui.log", "")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logging.SetupWriter(logFile, cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Metrics have no scrape endpoint here.
	cfg.Metrics.Enabled = false
	gw, err := app.Decorate(store.Gateway, cfg, nil)
	if err != nil {
		return err
	}

	service, err := app.NewService(cfg, gw)
	if err != nil {
		return err
	}
	sess, err := service.NewSession("tui")
	if err != nil {
		return err
	}

	model := application.New(ctx, sess, &admin.Store{GW: gw})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

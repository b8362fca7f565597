// Package main provides the interactive terminal chart of closing prices with
// news markers.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"stocklens/pkg/config"
	"stocklens/pkg/database"
	"stocklens/services/viewer"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	// The alt screen owns stdout, so logs go to a file
	logFile, err := tea.LogToFile(cfg.Viewer.LogFile, "viewer")
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	// Browser launchers print to the terminal we are drawing on
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	db, err := database.New(database.DefaultConfig(cfg.Database.Driver, cfg.Database.URL))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctrl := viewer.NewController(viewer.NewDBSource(db), viewer.BrowserOpener{}, cfg.SymbolSuffixes)
	model := viewer.New(ctrl, viewer.Options{DefaultDays: cfg.Viewer.DefaultDays})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running viewer: %v\n", err)
		os.Exit(1)
	}
}

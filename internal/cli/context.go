// Package cli provides the command-line interface for the adscout application.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/adscout/scrape/internal/app"
)

// Global reference - commands resolve the shared Application through it
var globalApp *app.Application

// SetApp stores the Application for commands to access
func SetApp(cmd *cobra.Command, a *app.Application) {
	globalApp = a
}

// GetApp retrieves the Application
func GetApp() *app.Application {
	return globalApp
}

// Package cli provides the command-line interface for the shelf application.
package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/law-makers/shelf/internal/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ctxKey is used for storing app context in cobra commands
type ctxKey string

const appKey ctxKey = "app"

var (
	activeMu sync.Mutex
	active   *app.Application
)

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	activeMu.Lock()
	active = a
	activeMu.Unlock()

	if cmd == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey, a))
}

// GetAppFromCmd retrieves the Application stored by SetApp
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	if cmd == nil || cmd.Context() == nil {
		return nil
	}
	a, _ := cmd.Context().Value(appKey).(*app.Application)
	return a
}

// closeApp shuts down the application started for the current command, if any
func closeApp() {
	activeMu.Lock()
	a := active
	active = nil
	activeMu.Unlock()

	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.HTTPTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("Application did not shut down cleanly")
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

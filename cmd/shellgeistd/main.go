// Command shellgeistd runs the ShellGeist daemon: a Unix-domain socket
// server that accepts line-delimited JSON edit requests and applies them
// through the safe-edit pipeline.
//
// Wired with Cobra/pflag per dm-vev-OpenClaude's cmd/claude/main.go.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/shellgeist/shellgeist/internal/auditlog"
	"github.com/shellgeist/shellgeist/internal/config"
	"github.com/shellgeist/shellgeist/internal/daemon"
	"github.com/shellgeist/shellgeist/internal/handlers"
	"github.com/shellgeist/shellgeist/internal/obslog"
)

// version is the daemon's release version, a fixed string constant.
const version = "0.1.0"

func main() {
	var socketOverride, rootOverride string

	rootCmd := &cobra.Command{
		Use:   "shellgeistd",
		Short: "ShellGeist - a safe, model-assisted code-editing daemon",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the daemon, listening on a Unix-domain socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(socketOverride, rootOverride)
		},
	}
	applyServeFlags(serveCmd.Flags(), &socketOverride, &rootOverride)
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the daemon version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("shellgeistd %s\n", version)
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(socketOverride, rootOverride string) error {
	_ = godotenv.Load()

	logger := obslog.Init()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	if rootOverride != "" {
		cwd = rootOverride
	}

	settings, err := config.LoadSettings(cwd)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	socketPath := settings.SocketPath
	if socketOverride != "" {
		socketPath = socketOverride
	}
	if socketPath == "" {
		socketPath = defaultSocketPath()
	}

	profiles := config.LoadModelProfiles()
	audit := auditlog.New(cwd)

	deps := handlers.Deps{
		Root:     cwd,
		Settings: settings,
		Profiles: profiles,
		Audit:    audit,
		Log:      logger,
	}

	ctx := context.Background()
	server := &daemon.Server{
		SocketPath: socketPath,
		Log:        logger,
		Handle: func(req map[string]any) map[string]any {
			requestID := uuid.NewString()
			resp := handlers.Dispatch(ctx, deps, req)
			resp["requestId"] = requestID
			return resp
		},
	}

	logger.Info().
		Bool("stderr_is_tty", term.IsTerminal(int(os.Stderr.Fd()))).
		Str("socket", socketPath).
		Msg("starting shellgeistd")

	return server.ListenAndServe()
}

// applyServeFlags defines the "serve" subcommand's flags, following
// cmd/claude/main.go's applyFlags(flags *pflag.FlagSet, ...) shape.
func applyServeFlags(flags *pflag.FlagSet, socketOverride, rootOverride *string) {
	flags.StringVar(socketOverride, "socket", "", "Unix-domain socket path (overrides settings.json)")
	flags.StringVar(rootOverride, "root", "", "Project root to serve (defaults to the current working directory)")
}

func defaultSocketPath() string {
	dir := os.TempDir()
	return dir + "/shellgeistd.sock"
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/muratoffalex/manobot/internal/app"
	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/router"
)

var (
	version   string
	buildTime string
)

func main() {
	exitCode := 0
	if err := newRootCommand(&exitCode).Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func addConfigFlag(fs *pflag.FlagSet, path *string) {
	fs.StringVarP(path, "config", "c", "", "path to a TOML or YAML config file")
}

func newRootCommand(exitCode *int) *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "Starting application version: %s (built at: %s)\n", version, buildTime)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := app.New(ctx, configPath)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		if err := application.Run(ctx); err != nil {
			application.Logger.WithError(err).Error("Application failed")
			return err
		}
		*exitCode = application.ExitCode()
		return nil
	}

	root := &cobra.Command{
		Use:          "bot",
		Short:        "Mano chat bot",
		Version:      version,
		SilenceUsage: true,
		RunE:         serve,
	}
	addConfigFlag(root.PersistentFlags(), &configPath)

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Connect to the platform and handle messages (default)",
			Args:  cobra.NoArgs,
			RunE:  serve,
		},
		newRouteCommand(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (built at: %s)\n", version, buildTime)
			},
		},
	)
	root.SetContext(context.Background())
	return root
}

func newRouteCommand(configPath *string) *cobra.Command {
	var privileged bool

	cmd := &cobra.Command{
		Use:   "route <text>",
		Short: "Show which command a message would be routed to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			r := router.New(cfg.Bot().WakeWords)
			printRoute(cmd.OutOrStdout(), r, strings.Join(args, " "), privileged)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&privileged, "privileged", "p", false, "route as the owner or an admin")
	return cmd
}

func printRoute(w io.Writer, r *router.Router, text string, privileged bool) {
	if _, ok := r.StripWake(text); !ok {
		fmt.Fprintln(w, "no wake word: message is ignored unless it is a reply")
	}

	result, ok := r.Route(text, privileged)
	switch {
	case !ok:
		fmt.Fprintln(w, "no command: AI chat")
	case result.Refused:
		fmt.Fprintf(w, "refused: %s needs a privileged caller\n", result.Command)
	default:
		fmt.Fprintf(w, "command: %s\n", result.Command)
		fmt.Fprintf(w, "args: %q\n", result.Args)
	}
}

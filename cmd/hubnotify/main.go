package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Fullex26/hubnotify/internal/actions"
	"github.com/Fullex26/hubnotify/internal/app"
	"github.com/Fullex26/hubnotify/internal/config"
	"github.com/Fullex26/hubnotify/internal/hub"
	"github.com/Fullex26/hubnotify/internal/logging"
	"github.com/Fullex26/hubnotify/internal/setup"
	"github.com/Fullex26/hubnotify/internal/version"
	"github.com/Fullex26/hubnotify/pkg/models"
)

var (
	cfgPath string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:          "hubnotify",
		Short:        "📣 hubnotify — report workflow events to a hub repository",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts := logging.OptionsFromEnv(os.Getenv)
			if verbose {
				opts.Level = "debug"
			}
			slog.SetDefault(logging.New(opts))
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultConfigPath, "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		runCmd(),
		inspectCmd(),
		testCmd(),
		buildHubCmd(),
		setupCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var mode, hubRepo string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the action step (entrypoint on the runner)",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt := actions.New()
			path := cfgPath
			if v := rt.Input(app.ConfigInput); v != "" {
				path = v
			}

			cfg, err := config.Load(path)
			if err != nil {
				rt.SetFailed(fmt.Sprintf("loading config: %v", err))
				exit(rt, stop)
			}

			a, err := app.New(cfg, rt, app.Overrides{
				Mode:    models.Mode(mode),
				HubRepo: hubRepo,
			})
			if err != nil {
				rt.SetFailed(err.Error())
				exit(rt, stop)
			}

			a.Run(ctx)
			exit(rt, stop)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "summary or listing (default from the mode input, then config)")
	cmd.Flags().StringVar(&hubRepo, "hub-repo", "", "hub repository owner/name (default from the hub-repo input)")
	return cmd
}

// exit ends the process with the step's exit code
func exit(rt *actions.Runtime, stop context.CancelFunc) {
	stop()
	os.Exit(rt.ExitCode())
}

func inspectCmd() *cobra.Command {
	var eventPath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the top-level fields of the event payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := os.Getenv
			if eventPath != "" {
				env = func(k string) string {
					if k == "GITHUB_EVENT_PATH" {
						return eventPath
					}
					return os.Getenv(k)
				}
			}
			rt := actions.NewWithEnv(env, os.Stderr)

			payload, err := rt.Payload()
			if err != nil {
				return err
			}
			return renderInspect(os.Stdout, rt.Context(), payload, shouldColorize(os.Stdout))
		},
	}
	cmd.Flags().StringVar(&eventPath, "event", "", "event payload file (default $GITHUB_EVENT_PATH)")
	return cmd
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test message to all configured relay channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			a, err := app.New(cfg, actions.New(), app.Overrides{})
			if err != nil {
				return err
			}

			fmt.Println("📣 Sending test message...")
			if err := a.TestChannels(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("✅ Test message sent!")
			return nil
		},
	}
}

func buildHubCmd() *cobra.Command {
	var opts hub.Options
	cmd := &cobra.Command{
		Use:   "build-hub",
		Short: "Build the hub static site into output/",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = verbose
			b := hub.NewBuilder(opts, slog.Default())
			if err := b.Build(); err != nil {
				return err
			}

			files, err := hub.ListContents(b.OutputDir())
			if err != nil {
				return err
			}
			for _, f := range files {
				slog.Debug("output file", "path", f)
			}
			fmt.Printf("✅ Hub built: %s (%d files)\n", b.OutputDir(), len(files))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.Test, "test", "t", false, "build the fixture site under ./test")
	cmd.Flags().StringVar(&opts.Base, "base", ".", "project root containing hub/")
	return cmd
}

func setupCmd() *cobra.Command {
	var envPath string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactive setup wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setup.Run(cfgPath, envPath)
		},
	}
	cmd.Flags().StringVar(&envPath, "env-file", setup.DefaultEnvPath, "path to env file for credentials")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hubnotify v%s\nhttps://github.com/Fullex26/hubnotify\n", version.Version)
		},
	}
}

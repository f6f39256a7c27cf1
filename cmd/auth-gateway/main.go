package main

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/brizzai/auth-gateway/internal/auth"
	"github.com/brizzai/auth-gateway/internal/auth/providers"
	"github.com/brizzai/auth-gateway/internal/config"
	"github.com/brizzai/auth-gateway/internal/logger"
	"github.com/brizzai/auth-gateway/internal/server"
	"github.com/brizzai/auth-gateway/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "auth-gateway",
	Short: "OAuth login gateway",
	Long: `auth-gateway runs the server side of an OAuth 2.0 Authorization Code + PKCE
login flow against a third-party identity provider, persisting the resulting
token pairs per user.`,
	Run: runServer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags()
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		pterm.Error.Printf("Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(&cfg.Logging); err != nil {
		pterm.Error.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app := fx.New(
		fx.Supply(cfg),
		providers.Module,
		store.Module,
		auth.Module,
		server.Module,
		fx.Invoke(run),
		fx.NopLogger,
	)

	app.Run()
}

// run ties the server lifetime to the fx lifecycle.
func run(lc fx.Lifecycle, srv *server.Server, users *store.UserStore, svc *auth.Service, shutdowner fx.Shutdowner) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(ctx); err != nil {
					logger.Error("Server stopped", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			svc.Close()
			return users.Close()
		},
	})
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rigwire/rigwire"
	"github.com/rigwire/rigwire/internal/adapters/httpapi"
	redisadapter "github.com/rigwire/rigwire/internal/adapters/redis"
	"github.com/rigwire/rigwire/internal/adapters/tcp"
	"github.com/rigwire/rigwire/internal/config"
	"github.com/rigwire/rigwire/internal/logging"
	"github.com/rigwire/rigwire/internal/metrics"
	"github.com/rigwire/rigwire/pkg/adapters/memory"
	"github.com/rigwire/rigwire/pkg/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the command bridge server",
	Long: `Starts the bridge with its TCP transport and, if configured, the HTTP
adapter. Commands from all transports execute serialized on the owner
goroutine.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("listen") {
			cfg.Listen, _ = cmd.Flags().GetString("listen")
		}
		if cmd.Flags().Changed("http") {
			cfg.HTTPListen, _ = cmd.Flags().GetString("http")
		}

		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		env := memory.NewEnv()
		if err := seedAssets(env, cfg); err != nil {
			fmt.Printf("Error seeding assets: %v\n", err)
			os.Exit(1)
		}

		// The shutdown command and OS signals share one cancellation path.
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		stats := metrics.New()
		opts := []rigwire.Option{
			rigwire.WithFactories(memory.NewDefaultFactories(env)...),
			rigwire.WithLogger(logger),
			rigwire.WithMetrics(stats),
			rigwire.WithMaxOperations(cfg.MaxOperations),
			rigwire.WithStopFunc(cancel),
		}
		if cfg.Redis.Enabled {
			journal := redisadapter.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
				redisadapter.WithKey(cfg.Redis.JournalKey),
				redisadapter.WithLimit(cfg.Redis.JournalLimit),
			)
			defer journal.Close()
			opts = append(opts, rigwire.WithAuditSink(journal))
		}

		bridge, err := rigwire.New(env, opts...)
		if err != nil {
			fmt.Printf("Error initializing rigwire: %v\n", err)
			os.Exit(1)
		}

		srv := tcp.NewServer(cfg.Listen, bridge.Router(), tcp.WithLogger(logger))
		if err := srv.Start(ctx); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}

		var httpSrv *http.Server
		if cfg.HTTPListen != "" {
			httpSrv = &http.Server{
				Addr:    cfg.HTTPListen,
				Handler: httpapi.Handler(bridge.Router(), stats, logger),
			}
			go func() {
				logger.Info("http adapter listening", "addr", httpSrv.Addr)
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("http adapter failed", "error", err)
					cancel()
				}
			}()
		}

		// The main goroutine is the owner goroutine: every command handler
		// runs inside this loop.
		if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Printf("Bridge error: %v\n", err)
		}

		logger.Info("shutting down")
		srv.Stop()
		if httpSrv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown did not complete", "error", err)
				_ = httpSrv.Close()
			}
		}
		logger.Info("rigwire stopped")
	},
}

// seedAssets populates the memory environment from config, or with a
// scratch asset carrying one graph per domain when nothing is configured.
func seedAssets(env *memory.Env, cfg *config.Config) error {
	if len(cfg.Assets) == 0 {
		env.AddAsset("scratch", map[string]domain.GraphKind{
			"event_graph":    domain.KindLogic,
			"material":       domain.KindShading,
			"motion_graph":   domain.KindMotion,
			"widget_tree":    domain.KindLayout,
			"particle_graph": domain.KindEffect,
		})
		return nil
	}
	for _, a := range cfg.Assets {
		graphs := make(map[string]domain.GraphKind, len(a.Graphs))
		for name, kind := range a.Graphs {
			k := domain.GraphKind(kind)
			switch k {
			case domain.KindLogic, domain.KindShading, domain.KindMotion, domain.KindLayout, domain.KindEffect:
			default:
				return fmt.Errorf("asset %s: graph %s has unknown kind %q", a.Name, name, kind)
			}
			graphs[name] = k
		}
		env.AddAsset(domain.AssetHandle(a.Name), graphs)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "TCP listen address (overrides config)")
	serveCmd.Flags().String("http", "", "HTTP listen address (overrides config)")
}

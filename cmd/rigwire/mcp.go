package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rigwire/rigwire"
	mcpadapter "github.com/rigwire/rigwire/internal/adapters/mcp"
	"github.com/rigwire/rigwire/internal/config"
	"github.com/rigwire/rigwire/internal/logging"
	"github.com/rigwire/rigwire/pkg/adapters/memory"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the bridge as an MCP server over stdio so AI agents can drive
the editing environment as tools. Logs go to stderr; stdout carries
JSON-RPC only.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		env := memory.NewEnv()
		if err := seedAssets(env, cfg); err != nil {
			log.Fatalf("Error seeding assets: %v", err)
		}

		bridge, err := rigwire.New(env,
			rigwire.WithFactories(memory.NewDefaultFactories(env)...),
			rigwire.WithLogger(logger),
			rigwire.WithMaxOperations(cfg.MaxOperations),
		)
		if err != nil {
			log.Fatalf("Error initializing rigwire: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Owner goroutine; tool calls block on it through the router.
		go func() {
			if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("bridge stopped", "error", err)
			}
		}()

		srv := mcpadapter.NewServer(bridge.Router(), rigwire.Version)
		logger.Info("starting mcp server on stdio")
		if err := srv.ServeStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server execution failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

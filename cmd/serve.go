package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rollcall-app/rollcall/api"
	"github.com/rollcall-app/rollcall/avatar"
	"github.com/rollcall-app/rollcall/config"
	"github.com/rollcall-app/rollcall/database"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Rollcall server",
	Example: `rollcall serve --config config.yml
rollcall serve -c /path/to/config.yml --log-level debug`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if rootCmdPersistentFlags.LogLevel != "" {
		setLogLevel(rootCmdPersistentFlags.LogLevel)
	} else {
		setLogLevel(cfg.LogLevel)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()
	db, err := database.New(connectCtx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	avatars, err := avatar.NewStorage(cfg.Uploads)
	if err != nil {
		log.Fatalf("failed to initialize avatar storage: %v", err)
	}

	server, err := api.New(cfg, db, avatars)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	go func() {
		log.Info("starting server", "listen", cfg.Listen)
		if err := server.Run(); err != nil {
			log.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Info("rollcall started successfully")
	<-c
	log.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down server", "error", err)
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Error("failed to close database", "error", err)
	}
}

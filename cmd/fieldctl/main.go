package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cuongbtq/fieldservice-be/cmd/fieldctl/command"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	opts := &command.Options{}
	root := &cobra.Command{
		Use:           "fieldctl",
		Short:         "Field service operations tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultConfig := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "configs/worker-service/config.yaml"
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", defaultConfig, "Path to configuration file")

	root.AddCommand(
		command.MigrateCommand{Options: opts}.Command(ctx),
		command.ScanCommand{Options: opts}.Command(ctx),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		log.Fatalf("fieldctl: %v", err)
	}
}

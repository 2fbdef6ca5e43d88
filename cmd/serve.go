package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ranking endpoints over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default from server.address)")
}

func serve(cmd *cobra.Command) {
	ctx := context.Background()
	log := newLogger()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	service, err := newService(ctx, config, log)
	if err != nil {
		log.Fatal("preparing the data stores", zap.Error(err))
	}

	address := cmd.Flag("address").Value.String()
	if address == "" {
		address = config.Server.Address
	}

	server := api.NewServer(service, log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stop
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("shutting down the server", zap.Error(err))
		}
	}()

	if err := server.Listen(address); err != nil {
		log.Fatal("serving http", zap.Error(err))
	}
}

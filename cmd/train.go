package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the scoring model on the historical hiring outcomes",
	Run: func(cmd *cobra.Command, _ []string) {
		train(cmd)
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringP("output", "o", "", "write the fitted model to this file (default from matching.model-file)")
}

func train(cmd *cobra.Command) {
	ctx := context.Background()
	log := newLogger()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	// Training always fits fresh, so a stale artifact must not seed the cache.
	modelFile := config.Matching.ModelFile
	config.Matching.ModelFile = ""

	service, err := newService(ctx, config, log)
	if err != nil {
		log.Fatal("preparing the data stores", zap.Error(err))
	}

	pipeline, metrics, err := service.Train()
	if err != nil {
		log.Fatal("fitting the model", zap.Error(err))
	}

	fmt.Println(metrics.String())

	output := cmd.Flag("output").Value.String()
	if output == "" {
		output = modelFile
	}
	if output == "" {
		log.Info("no model file configured, fitted model not persisted")
		return
	}

	if err := pipeline.Save(output); err != nil {
		log.Fatal("saving the model", zap.Error(err))
	}

	log.Info("model saved", zap.String("filename", output))
}

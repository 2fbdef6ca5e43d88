package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/ai"
)

const comparativeFilename = "comparative.md"

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a comparative hiring recommendation from the saved interview reports",
	Run: func(cmd *cobra.Command, _ []string) {
		report(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("requisition", "r", "", "requisition id")
}

func report(cmd *cobra.Command) {
	ctx := context.Background()
	log := newLogger()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	if config.AI == nil || !config.AI.Enabled {
		log.Fatal("comparative reports need a generative model", zap.String("hint", "set ai.enabled: true in the configuration file"))
	}

	service, err := newService(ctx, config, log)
	if err != nil {
		log.Fatal("preparing the data stores", zap.Error(err))
	}

	reqID := cmd.Flag("requisition").Value.String()
	if reqID == "" {
		reqID, err = selectRequisition(service, "")
		if err != nil {
			log.Fatal("selecting a requisition", zap.Error(err))
		}
	}

	req, err := service.Requisition(reqID)
	if err != nil {
		log.Fatal("loading the requisition", zap.Error(err))
	}

	reports, err := loadReports(config.Data.Dir, reqID)
	if err != nil {
		log.Fatal("loading the interview reports", zap.Error(err))
	}

	if len(reports) < 2 {
		log.Fatal("not enough interview reports for a comparison",
			zap.Int("found", len(reports)),
			zap.String("hint", "run the interview command for at least two candidates first"),
		)
	}

	generator, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		log.Fatal("creating the generator", zap.Error(err))
	}

	reporter := ai.NewReporter(generator, log, config.AI.MaxLogLength)

	analysis, err := reporter.ComparativeAnalysis(ctx, req, reports)
	if err != nil {
		log.Fatal("writing the comparative analysis", zap.Error(err))
	}

	path := filepath.Join(config.Data.Dir, "reports", reqID, comparativeFilename)
	if err := os.WriteFile(path, []byte(analysis+"\n"), 0o644); err != nil {
		log.Fatal("saving the comparative analysis", zap.Error(err))
	}

	fmt.Printf("\n%s\n", analysis)
	log.Info("comparative analysis saved", zap.String("filename", path))
}

// loadReports reads every per-candidate interview report saved for the
// requisition, skipping an earlier comparative analysis.
func loadReports(dataDir, reqID string) ([]string, error) {
	dir := filepath.Join(dataDir, "reports", reqID)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read reports directory: %w", err)
	}

	var reports []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == comparativeFilename || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read report %q: %w", entry.Name(), err)
		}
		reports = append(reports, string(data))
	}

	return reports, nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/export"
	"github.com/decisionhq/recruit-ranker/internal/ranking"
	"github.com/decisionhq/recruit-ranker/internal/store"
	"github.com/decisionhq/recruit-ranker/internal/workflow"
)

const (
	PromptExportExcel = "Export to Excel"
	PromptExplain     = "Explain a candidate's score"
	PromptInterview   = "Interview a candidate"
	PromptDone        = "Done"

	defaultExplainTopK = 10
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the prospects of a requisition by predicted hiring success",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("requisition", "r", "", "requisition id to rank; prompts interactively when unset")
	rankCmd.Flags().IntP("top", "n", 0, "number of candidates to keep (default from config)")
	rankCmd.Flags().StringP("search", "s", "", "filter the interactive requisition list by title or client")
	rankCmd.Flags().StringP("output", "o", "", "write the ranking to an .xlsx file and skip the interactive menu")
}

func rank(cmd *cobra.Command) {
	ctx := context.Background()
	log := newLogger()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting the recruit-ranker", zap.String("version", version))

	service, err := newService(ctx, config, log)
	if err != nil {
		log.Fatal("preparing the data stores", zap.Error(err))
	}

	reqID := cmd.Flag("requisition").Value.String()
	if reqID == "" {
		reqID, err = selectRequisition(service, cmd.Flag("search").Value.String())
		if err != nil {
			log.Fatal("selecting a requisition", zap.Error(err))
		}
	}

	topN, err := cmd.Flags().GetInt("top")
	if err != nil {
		log.Fatal("reading top flag", zap.Error(err))
	}

	table, err := service.Rank(ctx, reqID, topN)
	if err != nil {
		log.Fatal("ranking candidates", zap.Error(err))
	}

	printTable(table)

	if output := cmd.Flag("output").Value.String(); output != "" {
		if err := export.ToExcel(table, output); err != nil {
			log.Fatal("exporting ranking", zap.Error(err))
		}
		log.Info("ranking exported", zap.String("filename", output))
		return
	}

	for {
		if err := handleRankAction(ctx, config, service, table, log); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func selectRequisition(service *workflow.Service, search string) (string, error) {
	reqs := service.Requisitions()
	if search != "" {
		reqs = reqs.Search(search)
	}
	if reqs.Len() == 0 {
		return "", errors.New("no requisitions matched")
	}

	items := make([]string, 0, reqs.Len())
	for _, req := range reqs.Items {
		items = append(items, fmt.Sprintf("%s %s / %s", req.ID, req.Title, req.Client))
	}

	prompt := promptui.Select{
		Label: "Choose a requisition and press ENTER",
		Items: items,
		Size:  15,
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return strings.Split(selected, " ")[0], nil
}

func handleRankAction(ctx context.Context, config *Config, service *workflow.Service, table *ranking.Table, log *zap.Logger) error {
	prompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptExportExcel, PromptExplain, PromptInterview, PromptDone},
	}

	_, action, err := prompt.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptExportExcel:
		filename := fmt.Sprintf("ranking-%s.xlsx", table.RequisitionID)
		if err := export.ToExcel(table, filename); err != nil {
			return fmt.Errorf("export ranking: %w", err)
		}
		log.Info("ranking exported", zap.String("filename", filename))
		return nil
	case PromptExplain:
		return explainEntry(service, table)
	case PromptInterview:
		return interviewEntry(ctx, config, service, table, log)
	case PromptDone:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func interviewEntry(ctx context.Context, config *Config, service *workflow.Service, table *ranking.Table, log *zap.Logger) error {
	if config.AI == nil || !config.AI.Enabled {
		fmt.Println("Interviews need a generative model: set ai.enabled: true in the configuration file.")
		return nil
	}
	if len(table.Entries) == 0 {
		fmt.Println("Nothing to interview: the ranking is empty.")
		return nil
	}

	candID, err := selectEntry(table, "Choose a candidate to interview and press ENTER")
	if err != nil {
		return err
	}

	req, err := service.Requisition(table.RequisitionID)
	if err != nil {
		return err
	}
	cand, err := service.Candidate(candID)
	if err != nil {
		return err
	}

	if err := runInterviewSession(ctx, config, req, cand, log); err != nil {
		log.Error("interview session failed", zap.Error(err))
		fmt.Println("The interview could not be completed; back to the menu.")
	}
	return nil
}

func explainEntry(service *workflow.Service, table *ranking.Table) error {
	if table.Scorer != ranking.ScorerModel {
		fmt.Println("Explanations are only available for model-based rankings.")
		return nil
	}
	if len(table.Entries) == 0 {
		fmt.Println("Nothing to explain: the ranking is empty.")
		return nil
	}

	candID, err := selectEntry(table, "Choose a candidate and press ENTER")
	if err != nil {
		return err
	}

	contributions, err := service.Explain(table.RequisitionID, candID, defaultExplainTopK)
	if err != nil {
		return err
	}

	fmt.Printf("\nTop features for candidate %s:\n", candID)
	for _, c := range contributions {
		fmt.Printf("  %-40s %+.4f\n", c.Feature, c.Value)
	}
	fmt.Println()

	return nil
}

func selectEntry(table *ranking.Table, label string) (string, error) {
	items := make([]string, 0, len(table.Entries))
	for _, entry := range table.Entries {
		items = append(items, fmt.Sprintf("%s %s (score %d)", entry.CandidateID, entry.Name, entry.Score))
	}

	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  15,
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return strings.Split(selected, " ")[0], nil
}

func printTable(table *ranking.Table) {
	fmt.Printf("\nRanking for %s (%s), client %s, scorer: %s\n\n",
		table.Title, table.RequisitionID, table.Client, table.Scorer)
	fmt.Printf("%-4s %-12s %-32s %-28s %s\n", "#", "ID", "Name", "Status", "Score")
	for i, entry := range table.Entries {
		status := entry.Status
		if status == store.StatusUnset {
			status = "-"
		}
		fmt.Printf("%-4d %-12s %-32s %-28s %d\n", i+1, entry.CandidateID, entry.Name, status, entry.Score)
	}
	fmt.Println()
}

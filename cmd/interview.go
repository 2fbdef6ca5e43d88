package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/ai"
	"github.com/decisionhq/recruit-ranker/internal/store"
)

const interviewStopWord = "exit"

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an AI-led screening interview with a candidate",
	Run: func(cmd *cobra.Command, _ []string) {
		interview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringP("requisition", "r", "", "requisition id")
	interviewCmd.Flags().StringP("candidate", "c", "", "candidate id")
}

func interview(cmd *cobra.Command) {
	ctx := context.Background()
	log := newLogger()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	if config.AI == nil || !config.AI.Enabled {
		log.Fatal("interviews need a generative model", zap.String("hint", "set ai.enabled: true in the configuration file"))
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

	candID := cmd.Flag("candidate").Value.String()
	if candID == "" {
		log.Fatal("a candidate id is required", zap.String("hint", "pass --candidate"))
	}

	cand, err := service.Candidate(candID)
	if err != nil {
		log.Fatal("loading the candidate", zap.Error(err))
	}

	if err := runInterviewSession(ctx, config, req, cand, log); err != nil {
		log.Fatal("running the interview", zap.Error(err))
	}
}

// runInterviewSession drives one full interview: the question loop, the
// report, and saving both under the data dir. Shared with the rank menu.
func runInterviewSession(ctx context.Context, config *Config, req *store.Requisition, cand *store.Candidate, log *zap.Logger) error {
	generator, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		return fmt.Errorf("creating the generator: %w", err)
	}

	interviewer := ai.NewInterviewer(generator, log, config.Interview.MaxQuestions, config.AI.MaxLogLength)
	reporter := ai.NewReporter(generator, log, config.AI.MaxLogLength)

	fmt.Printf("\nInterviewing %s for %q. Type %q to finish early.\n\n", cand.FullName, req.Title, interviewStopWord)

	transcript := runInterviewLoop(ctx, interviewer, req, cand, log)
	if len(transcript) == 0 {
		log.Info("exiting", zap.String("reason", "no interview turns recorded"))
		return nil
	}

	report, err := reporter.InterviewReport(ctx, req, cand.FullName, transcript)
	if err != nil {
		return fmt.Errorf("writing the interview report: %w", err)
	}

	path, err := saveReport(config.Data.Dir, req.ID, cand.ID, transcript, report)
	if err != nil {
		return fmt.Errorf("saving the interview report: %w", err)
	}

	fmt.Printf("\n%s\n", report)
	log.Info("interview report saved", zap.String("filename", path))
	return nil
}

func runInterviewLoop(ctx context.Context, interviewer *ai.Interviewer, req *store.Requisition, cand *store.Candidate, log *zap.Logger) []ai.Turn {
	var transcript []ai.Turn

	for questionNumber := 1; questionNumber <= interviewer.MaxQuestions(); questionNumber++ {
		question, err := interviewer.NextQuestion(ctx, req, cand, transcript, questionNumber)
		if err != nil {
			log.Error("generating the next question", zap.Error(err))
			fmt.Println("The model did not answer; ending the interview with the turns recorded so far.")
			return transcript
		}

		fmt.Printf("Interviewer: %s\n", question)
		transcript = append(transcript, ai.Turn{Role: ai.RoleInterviewer, Content: question})

		answerPrompt := promptui.Prompt{Label: "Candidate"}
		answer, err := answerPrompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) {
				return transcript
			}
			log.Fatal("reading the answer", zap.Error(err))
		}

		answer = strings.TrimSpace(answer)
		if answer == "" || strings.EqualFold(answer, interviewStopWord) {
			return transcript
		}

		transcript = append(transcript, ai.Turn{Role: ai.RoleCandidate, Content: answer})
	}

	return transcript
}

func saveReport(dataDir, reqID, candID string, transcript []ai.Turn, report string) (string, error) {
	dir := filepath.Join(dataDir, "reports", reqID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(report)
	sb.WriteString("\n\n## Transcript\n\n")
	sb.WriteString(ai.FormatTranscript(transcript))
	sb.WriteString("\n")

	path := filepath.Join(dir, candID+".md")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}

	return path, nil
}

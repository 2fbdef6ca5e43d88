// Package workflow wires the stores, the scoring pipeline, and the fallback
// scorer into the operations shared by the CLI commands and the HTTP API.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/ai"
	"github.com/decisionhq/recruit-ranker/internal/dataset"
	"github.com/decisionhq/recruit-ranker/internal/heuristic"
	"github.com/decisionhq/recruit-ranker/internal/matching"
	"github.com/decisionhq/recruit-ranker/internal/ranking"
	"github.com/decisionhq/recruit-ranker/internal/store"
)

var (
	// ErrRequisitionNotFound reports an unknown requisition id.
	ErrRequisitionNotFound = errors.New("requisition not found")
	// ErrCandidateNotFound reports a candidate id with no profile in the store.
	ErrCandidateNotFound = errors.New("candidate not found")
)

// Config assembles the dependencies of a Service.
type Config struct {
	Downloader *store.Downloader
	// SuccessKeywords override the status keywords that mark a positive
	// training label. Empty means the defaults.
	SuccessKeywords []string
	Matching        matching.Options
	// TopN bounds ranking tables when the caller does not pass a limit.
	TopN int
	// Extractor enables the keyword fallback scorer. Nil disables it, in
	// which case insufficient training data is a hard error.
	Extractor *ai.Extractor
	Logger    *zap.Logger
}

// Service executes ranking, training, and explanation against the loaded
// stores. Safe for concurrent use after Load.
type Service struct {
	downloader *store.Downloader
	labeler    *dataset.Labeler
	opts       matching.Options
	topN       int
	extractor  *ai.Extractor
	logger     *zap.Logger

	cache matching.Cache

	mu       sync.RWMutex
	reqs     *store.Requisitions
	outcomes *store.Outcomes
}

func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		downloader: cfg.Downloader,
		labeler:    dataset.NewLabeler(cfg.SuccessKeywords),
		opts:       cfg.Matching,
		topN:       cfg.TopN,
		extractor:  cfg.Extractor,
		logger:     logger,
	}
}

// Load downloads any missing store files and parses the requisition and
// prospect stores. The candidate store stays on disk and is streamed per
// request.
func (s *Service) Load(ctx context.Context) error {
	if err := s.downloader.EnsureData(ctx); err != nil {
		return err
	}

	reqs, err := store.LoadRequisitions(s.downloader.RequisitionsPath())
	if err != nil {
		return err
	}

	outcomes, err := store.LoadOutcomes(s.downloader.ProspectsPath())
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.reqs = reqs
	s.outcomes = outcomes
	s.mu.Unlock()

	s.cache.Invalidate()

	s.logger.Info("stores loaded",
		zap.Int("requisitions", reqs.Len()),
		zap.Int("outcomes", outcomes.Len()),
	)

	return nil
}

// Requisitions returns the loaded requisition collection.
func (s *Service) Requisitions() *store.Requisitions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reqs
}

// Requisition resolves a requisition by id.
func (s *Service) Requisition(id string) (*store.Requisition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.reqs == nil {
		return nil, store.ErrUnavailable
	}
	req := s.reqs.FindByID(id)
	if req == nil {
		return nil, fmt.Errorf("%w: %q", ErrRequisitionNotFound, id)
	}
	return req, nil
}

// Candidate loads a single candidate profile from the store.
func (s *Service) Candidate(id string) (*store.Candidate, error) {
	cands, err := store.FetchCandidates(s.downloader.CandidatesPath(), store.IDSet([]string{id}))
	if err != nil {
		return nil, err
	}
	cand, ok := cands[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCandidateNotFound, id)
	}
	return cand, nil
}

// TrainingTable joins every prospect outcome with its requisition and
// candidate texts and applies the success labels.
func (s *Service) TrainingTable() (*dataset.Table, error) {
	s.mu.RLock()
	reqs, outcomes := s.reqs, s.outcomes
	s.mu.RUnlock()

	if reqs == nil || outcomes == nil {
		return nil, store.ErrUnavailable
	}

	builder := &dataset.Builder{Logger: s.logger}
	joined, err := builder.Build(reqs, outcomes, s.lookupCandidates)
	if err != nil {
		return nil, err
	}

	return s.labeler.Apply(joined)
}

// Train fits a fresh pipeline on the full training table, bypassing the
// cache, and caches the result for subsequent rankings.
func (s *Service) Train() (*matching.Pipeline, *matching.Metrics, error) {
	pipeline, metrics, err := s.fit()
	if err != nil {
		return nil, nil, err
	}

	s.cache.Put(pipeline, metrics)
	return pipeline, metrics, nil
}

// LoadModel seeds the pipeline cache from a previously saved artifact.
func (s *Service) LoadModel(path string) error {
	pipeline, err := matching.LoadPipeline(path)
	if err != nil {
		return err
	}

	s.cache.Put(pipeline, nil)
	s.logger.Info("model artifact loaded", zap.String("path", path))
	return nil
}

// Rank scores every prospect of a requisition and returns the ranked table.
// When the training data cannot support a model fit and an extractor is
// configured, it falls back to the keyword scorer instead of failing.
func (s *Service) Rank(ctx context.Context, reqID string, topN int) (*ranking.Table, error) {
	req, err := s.Requisition(reqID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	prospects := s.outcomes.ForRequisition(reqID)
	s.mu.RUnlock()

	cands, err := store.FetchCandidates(s.downloader.CandidatesPath(), store.IDSet(prospects.CandidateIDs()))
	if err != nil {
		return nil, err
	}

	if topN <= 0 {
		topN = s.topN
	}

	table := &ranking.Table{
		RequisitionID: req.ID,
		Title:         req.Title,
		Client:        req.Client,
		GeneratedAt:   time.Now(),
	}

	pipeline, _, err := s.pipeline()
	switch {
	case err == nil:
		table.Scorer = ranking.ScorerModel
		s.rankWithModel(pipeline, req, prospects, cands, table)
	case errors.Is(err, dataset.ErrInsufficientLabelDiversity) || errors.Is(err, matching.ErrModelUnavailable):
		if s.extractor == nil {
			return nil, err
		}
		s.logger.Warn("model unavailable, falling back to keyword scorer",
			zap.String("requisition_id", reqID),
			zap.Error(err),
		)
		table.Scorer = ranking.ScorerHeuristic
		if err := s.rankWithHeuristic(ctx, req, prospects, cands, table); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	table.SortAndTruncate(topN)

	s.logger.Info("ranking produced",
		zap.String("requisition_id", reqID),
		zap.String("scorer", table.Scorer),
		zap.Int("candidates", len(table.Entries)),
	)

	return table, nil
}

// Explain returns the top feature contributions for one prospect's score
// under the current model.
func (s *Service) Explain(reqID, candID string, topK int) ([]matching.Contribution, error) {
	req, err := s.Requisition(reqID)
	if err != nil {
		return nil, err
	}

	cand, err := s.Candidate(candID)
	if err != nil {
		return nil, err
	}

	pipeline, _, err := s.pipeline()
	if err != nil {
		return nil, err
	}

	doc := documentText(req, cand)
	return matching.Explain(pipeline, doc, topK)
}

func (s *Service) rankWithModel(pipeline *matching.Pipeline, req *store.Requisition, prospects *store.Outcomes, cands map[string]*store.Candidate, table *ranking.Table) {
	docs := make([]string, len(prospects.Items))
	for i, outcome := range prospects.Items {
		docs[i] = documentText(req, cands[outcome.CandidateID])
	}

	probs := pipeline.Score(docs)
	for i, outcome := range prospects.Items {
		table.Entries = append(table.Entries, ranking.Entry{
			CandidateID: outcome.CandidateID,
			Name:        outcome.CandidateName,
			Status:      outcome.Status,
			Score:       ranking.ScoreFromProbability(probs[i]),
		})
	}
}

func (s *Service) rankWithHeuristic(ctx context.Context, req *store.Requisition, prospects *store.Outcomes, cands map[string]*store.Candidate, table *ranking.Table) error {
	profile, err := s.extractor.Competencies(ctx, req.Competencies())
	if err != nil {
		return fmt.Errorf("extract competencies for fallback scorer: %w", err)
	}

	for _, outcome := range prospects.Items {
		score := 0
		if cand, ok := cands[outcome.CandidateID]; ok {
			score = heuristic.Score(cand.HeuristicText(), profile)
		}
		table.Entries = append(table.Entries, ranking.Entry{
			CandidateID: outcome.CandidateID,
			Name:        outcome.CandidateName,
			Status:      outcome.Status,
			Score:       score,
		})
	}

	return nil
}

func (s *Service) pipeline() (*matching.Pipeline, *matching.Metrics, error) {
	return s.cache.GetOrFit(s.fit)
}

func (s *Service) fit() (*matching.Pipeline, *matching.Metrics, error) {
	table, err := s.TrainingTable()
	if err != nil {
		return nil, nil, err
	}
	return matching.Fit(table, s.opts, s.logger)
}

func (s *Service) lookupCandidates(ids map[string]struct{}) (map[string]*store.Candidate, error) {
	return store.FetchCandidates(s.downloader.CandidatesPath(), ids)
}

func documentText(req *store.Requisition, cand *store.Candidate) string {
	row := &dataset.Row{RequisitionText: req.ProfileText}
	if cand != nil {
		row.CandidateText = cand.Text()
	}
	return row.DocumentText()
}

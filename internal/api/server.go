// Package api exposes the ranking workflow over HTTP.
package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/dataset"
	"github.com/decisionhq/recruit-ranker/internal/matching"
	"github.com/decisionhq/recruit-ranker/internal/store"
	"github.com/decisionhq/recruit-ranker/internal/workflow"
)

// Server wraps a fiber app serving the ranking endpoints.
type Server struct {
	app     *fiber.App
	service *workflow.Service
	logger  *zap.Logger
}

type rankRequest struct {
	RequisitionID string `json:"requisition_id"`
	TopN          int    `json:"top_n"`
}

type explainRequest struct {
	RequisitionID string `json:"requisition_id"`
	CandidateID   string `json:"candidate_id"`
	TopK          int    `json:"top_k"`
}

type requisitionSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Client string `json:"client"`
}

func NewServer(service *workflow.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "recruit-ranker",
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())

	s := &Server{
		app:     app,
		service: service,
		logger:  logger,
	}

	app.Get("/healthz", s.health)

	v1 := app.Group("/api/v1")
	v1.Get("/requisitions", s.listRequisitions)
	v1.Post("/rank", s.rank)
	v1.Post("/explain", s.explain)

	return s
}

// Listen blocks serving HTTP on the given address.
func (s *Server) Listen(address string) error {
	s.logger.Info("http server listening", zap.String("address", address))
	return s.app.Listen(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) listRequisitions(c *fiber.Ctx) error {
	reqs := s.service.Requisitions()
	if reqs == nil {
		return fiber.NewError(fiber.StatusBadGateway, store.ErrUnavailable.Error())
	}

	summaries := make([]requisitionSummary, 0, reqs.Len())
	for _, req := range reqs.Items {
		summaries = append(summaries, requisitionSummary{
			ID:     req.ID,
			Title:  req.Title,
			Client: req.Client,
		})
	}

	return c.JSON(fiber.Map{"requisitions": summaries})
}

func (s *Server) rank(c *fiber.Ctx) error {
	var req rankRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.RequisitionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "requisition_id is required")
	}

	table, err := s.service.Rank(c.Context(), req.RequisitionID, req.TopN)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(table)
}

func (s *Server) explain(c *fiber.Ctx) error {
	var req explainRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.RequisitionID == "" || req.CandidateID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "requisition_id and candidate_id are required")
	}

	contributions, err := s.service.Explain(req.RequisitionID, req.CandidateID, req.TopK)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"requisition_id": req.RequisitionID,
		"candidate_id":   req.CandidateID,
		"contributions":  contributions,
	})
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, workflow.ErrRequisitionNotFound) || errors.Is(err, workflow.ErrCandidateNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, dataset.ErrInsufficientLabelDiversity) || errors.Is(err, matching.ErrModelUnavailable) || errors.Is(err, matching.ErrExplanationUnavailable):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	message := err.Error()
	if message == "" {
		message = "internal server error"
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-eventplanner-be/internal/dto"
	"ai-eventplanner-be/internal/entity"
	"ai-eventplanner-be/internal/pkg/logger"
	"ai-eventplanner-be/internal/repository/unitofwork"
	"ai-eventplanner-be/pkg/events"
	pktNats "ai-eventplanner-be/pkg/nats"
	"ai-eventplanner-be/pkg/pipeline"
)

const defaultVendorLimit = 5

type IEventPlanService interface {
	GeneratePlan(ctx context.Context, req *dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error)
}

type eventPlanService struct {
	matcher          *pipeline.Pipeline
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewEventPlanService(
	matcher *pipeline.Pipeline,
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IEventPlanService {
	return &eventPlanService{
		matcher:          matcher,
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *eventPlanService) GeneratePlan(ctx context.Context, req *dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultVendorLimit
	}

	result, err := s.matcher.Match(ctx, req.Description, req.Location, req.ExtraAPIKeys, limit)
	if err != nil {
		return nil, err
	}

	s.persistPlaces(ctx, result)
	s.scheduleReembeds(ctx, result)
	s.emitPlanEvent(ctx, req.Location, result)

	vendors := make(map[string][]dto.VendorRecommendation, len(result.Ranked))
	for category, placeIDs := range result.Ranked {
		recs := make([]dto.VendorRecommendation, 0, len(placeIDs))
		for _, id := range placeIDs {
			c, ok := result.Candidates[id]
			if !ok {
				continue
			}
			recs = append(recs, dto.VendorRecommendation{
				PlaceID:  c.PlaceID,
				Name:     c.Name,
				Category: category,
				Address:  c.Address,
				Phone:    c.Phone,
				Website:  c.Website,
				Rating:   c.Rating,
				Reviews:  c.RatingCount,
				Types:    c.Types,
			})
		}
		vendors[category] = recs
	}

	return &dto.GeneratePlanResponse{
		Title:           buildTitle(req.EventType, req.Date),
		EventType:       req.EventType,
		Description:     req.Description,
		Location:        req.Location,
		Date:            req.Date,
		Budget:          req.Budget,
		GuestCount:      req.GuestCount,
		Vendors:         vendors,
		Timeline:        buildTimeline(req.EventType),
		BudgetBreakdown: buildBudgetBreakdown(req.EventType, req.Budget),
		Tips:            buildTips(req.EventType),
		Checklist:       buildChecklist(req.EventType),
		CreatedAt:       time.Now().Format(time.RFC3339),
	}, nil
}

// persistPlaces stores collected details so later plan views can hydrate
// vendors without refetching the provider. Failures are logged only.
func (s *eventPlanService) persistPlaces(ctx context.Context, result *pipeline.Result) {
	if len(result.Candidates) == 0 {
		return
	}

	now := time.Now()
	places := make([]*entity.Place, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		places = append(places, &entity.Place{
			PlaceID:     c.PlaceID,
			Name:        c.Name,
			PrimaryType: c.PrimaryType,
			Types:       c.Types,
			Address:     c.Address,
			Phone:       c.Phone,
			Website:     c.Website,
			Rating:      c.Rating,
			RatingCount: c.RatingCount,
			Reviews:     c.Reviews,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.PlaceRepository().UpsertMany(ctx, places); err != nil {
		s.logger.Warn("plan", "failed to persist collected places", map[string]interface{}{
			"count": len(places),
			"error": err.Error(),
		})
	}
}

// scheduleReembeds queues every candidate document for background vector
// refresh so stored embeddings track provider data drift.
func (s *eventPlanService) scheduleReembeds(ctx context.Context, result *pipeline.Result) {
	for _, c := range result.Candidates {
		doc := c.Document()
		if doc == "" {
			continue
		}
		payload, err := json.Marshal(dto.PublishEmbedPlaceMessage{
			PlaceID:  c.PlaceID,
			Document: doc,
		})
		if err != nil {
			continue
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			s.logger.Warn("plan", "failed to queue re-embed", map[string]interface{}{
				"place_id": c.PlaceID,
				"error":    err.Error(),
			})
		}
	}
}

func (s *eventPlanService) emitPlanEvent(ctx context.Context, location string, result *pipeline.Result) {
	if s.eventPublisher == nil {
		return
	}

	counts := make(map[string]int, len(result.Ranked))
	for category, ids := range result.Ranked {
		counts[category] = len(ids)
	}

	event := events.NewPlanGenerated(location, len(result.Queries), counts)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("plan", "failed to publish plan event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

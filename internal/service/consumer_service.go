package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"ai-eventplanner-be/internal/dto"
	"ai-eventplanner-be/internal/repository/unitofwork"
	"ai-eventplanner-be/pkg/embedding"
	"ai-eventplanner-be/pkg/keypool"
	"ai-eventplanner-be/pkg/vendor"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// exhaustedBackoff delays redelivery when no credential is available.
// gochannel redelivers a Nacked message immediately, so without the pause
// the consumer would spin against an exhausted quota.
const exhaustedBackoff = 10 * time.Second

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService refreshes stored place vectors in the background so the
// request path never waits on a regeneration. Generations go through the
// same credential pool as the request path, so background work counts
// against the per-key RPM window too.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	keys              *keypool.Pool
	dimension         int
	backoff           func(ctx context.Context, d time.Duration)
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	keys *keypool.Pool,
	dimension int,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		keys:              keys,
		dimension:         dimension,
		backoff:           waitCtx,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedPlaceMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if payload.Document == "" {
		log.Printf("[WARN] Empty document for place %s, skipping", payload.PlaceID)
		msg.Ack()
		return
	}

	apiKey, err := cs.keys.Acquire(ctx)
	if err != nil {
		log.Printf("[WARN] No embedding credential available for place %s: %v", payload.PlaceID, err)
		cs.backoff(ctx, exhaustedBackoff)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Refreshing embedding for place %s (document length: %d)", payload.PlaceID, len(payload.Document))

	values, err := cs.embeddingProvider.Generate(ctx, apiKey, payload.Document, cs.dimension)
	if err != nil {
		if errors.Is(err, embedding.ErrMalformedResponse) {
			log.Printf("[ERROR] Unusable embedding response for place %s: %v", payload.PlaceID, err)
			msg.Ack() // Retrying a malformed payload changes nothing.
			return
		}
		if errors.Is(err, embedding.ErrQuotaExhausted) {
			log.Printf("[WARN] Credential quota exhausted while refreshing place %s, rotating", payload.PlaceID)
			cs.keys.ReportLimited(apiKey)
			msg.Nack()
			return
		}
		log.Printf("[ERROR] Failed to generate embedding for place %s: %v", payload.PlaceID, err)
		msg.Nack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	stored, failed := uow.PlaceEmbeddingRepository().UpsertMany(ctx, []vendor.Record{
		{PlaceID: payload.PlaceID, Vector: embedding.Normalize(values)},
	})
	if failed > 0 {
		log.Printf("[ERROR] Failed to store embedding for place %s", payload.PlaceID)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Embedding refreshed for place %s (stored: %d)", payload.PlaceID, stored)
	msg.Ack()
}

func waitCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

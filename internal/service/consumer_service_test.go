package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"ai-eventplanner-be/internal/dto"
	"ai-eventplanner-be/internal/entity"
	"ai-eventplanner-be/internal/repository/contract"
	"ai-eventplanner-be/internal/repository/specification"
	"ai-eventplanner-be/internal/repository/unitofwork"
	"ai-eventplanner-be/pkg/embedding"
	"ai-eventplanner-be/pkg/keypool"
	"ai-eventplanner-be/pkg/vendor"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
)

// scriptedEmbedProvider returns a fixed vector, or the scripted error, and
// records which credential each call used.
type scriptedEmbedProvider struct {
	mu     sync.Mutex
	vector []float32
	err    error
	keys   []string
}

func (p *scriptedEmbedProvider) Generate(ctx context.Context, apiKey, text string, dimensionality int) ([]float32, error) {
	p.mu.Lock()
	p.keys = append(p.keys, apiKey)
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.vector, nil
}

type fakeEmbedRepo struct {
	records []vendor.Record
}

func (r *fakeEmbedRepo) GetMany(ctx context.Context, placeIDs []string) (map[string][]float32, error) {
	return map[string][]float32{}, nil
}

func (r *fakeEmbedRepo) UpsertMany(ctx context.Context, records []vendor.Record) (int, int) {
	r.records = append(r.records, records...)
	return len(records), 0
}

func (r *fakeEmbedRepo) SearchNearest(ctx context.Context, vector []float32, limit int, allowIDs []string) ([]string, error) {
	return nil, nil
}

func (r *fakeEmbedRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PlaceEmbedding, error) {
	return nil, nil
}

func (r *fakeEmbedRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeUnitOfWork struct {
	embedRepo *fakeEmbedRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }
func (u *fakeUnitOfWork) PlaceRepository() contract.PlaceRepository {
	return nil
}
func (u *fakeUnitOfWork) PlaceEmbeddingRepository() contract.PlaceEmbeddingRepository {
	return u.embedRepo
}

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func newTestConsumer(provider embedding.Provider, pool *keypool.Pool) (*consumerService, *fakeEmbedRepo, *bool) {
	repo := &fakeEmbedRepo{}
	backedOff := false
	cs := &consumerService{
		topicName:         "EMBED_PLACE_CONTENT",
		uowFactory:        &fakeUowFactory{uow: &fakeUnitOfWork{embedRepo: repo}},
		embeddingProvider: provider,
		keys:              pool,
		dimension:         2,
		backoff:           func(ctx context.Context, d time.Duration) { backedOff = true },
	}
	return cs, repo, &backedOff
}

func embedMessage(t *testing.T, placeID, document string) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishEmbedPlaceMessage{PlaceID: placeID, Document: document})
	assert.NoError(t, err)
	return message.NewMessage("test-msg", payload)
}

func isAcked(msg *message.Message) bool {
	select {
	case <-msg.Acked():
		return true
	default:
		return false
	}
}

func isNacked(msg *message.Message) bool {
	select {
	case <-msg.Nacked():
		return true
	default:
		return false
	}
}

func TestProcessMessageRefreshesStoredVector(t *testing.T) {
	provider := &scriptedEmbedProvider{vector: []float32{3, 4}}
	cs, repo, _ := newTestConsumer(provider, keypool.New("bg-key", nil, 100))

	msg := embedMessage(t, "p1", "Rooftop venue event_venue")
	cs.processMessage(context.Background(), msg)

	assert.True(t, isAcked(msg))
	if assert.Len(t, repo.records, 1) {
		assert.Equal(t, "p1", repo.records[0].PlaceID)
		assert.InDelta(t, 0.6, repo.records[0].Vector[0], 1e-6)
		assert.InDelta(t, 0.8, repo.records[0].Vector[1], 1e-6)
	}
	// The credential came from the pool, not from config.
	assert.Equal(t, []string{"bg-key"}, provider.keys)
}

func TestProcessMessageQuotaMarksCredentialLimited(t *testing.T) {
	provider := &scriptedEmbedProvider{err: fmt.Errorf("generate: %w", embedding.ErrQuotaExhausted)}
	pool := keypool.New("bg-key", nil, 100)
	cs, repo, _ := newTestConsumer(provider, pool)

	msg := embedMessage(t, "p1", "Rooftop venue")
	cs.processMessage(context.Background(), msg)

	assert.True(t, isNacked(msg))
	assert.Empty(t, repo.records)
	assert.Len(t, provider.keys, 1)

	// The quota report must stick on the shared pool.
	_, err := pool.Acquire(context.Background())
	assert.ErrorIs(t, err, keypool.ErrAllKeysExhausted)
}

func TestProcessMessageBacksOffWhenNoCredential(t *testing.T) {
	provider := &scriptedEmbedProvider{vector: []float32{1, 0}}
	pool := keypool.New("bg-key", nil, 100)
	pool.ReportLimited("bg-key")
	cs, repo, backedOff := newTestConsumer(provider, pool)

	msg := embedMessage(t, "p1", "Rooftop venue")
	cs.processMessage(context.Background(), msg)

	assert.True(t, isNacked(msg))
	assert.True(t, *backedOff)
	assert.Empty(t, provider.keys) // no generation without a credential
	assert.Empty(t, repo.records)
}

func TestProcessMessageMalformedResponseAcked(t *testing.T) {
	provider := &scriptedEmbedProvider{err: fmt.Errorf("generate: %w", embedding.ErrMalformedResponse)}
	cs, repo, _ := newTestConsumer(provider, keypool.New("bg-key", nil, 100))

	msg := embedMessage(t, "p1", "Rooftop venue")
	cs.processMessage(context.Background(), msg)

	assert.True(t, isAcked(msg))
	assert.Empty(t, repo.records)
}

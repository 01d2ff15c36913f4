package collector

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-eventplanner-be/internal/pkg/logger"
	"ai-eventplanner-be/pkg/geocode"
	"ai-eventplanner-be/pkg/places"
	"ai-eventplanner-be/pkg/vendor"
)

type fakeResolver struct {
	rect geocode.Rect
	err  error
}

func (r *fakeResolver) Resolve(ctx context.Context, location string) (geocode.Rect, error) {
	return r.rect, r.err
}

type fakeClient struct {
	mu          sync.Mutex
	searches    map[string][]string // query -> place ids
	searchErr   map[string]error
	detailErr   map[string]error
	detailCalls int
}

func (c *fakeClient) SearchText(ctx context.Context, query string, rect geocode.Rect) ([]string, error) {
	if err := c.searchErr[query]; err != nil {
		return nil, err
	}
	return c.searches[query], nil
}

func (c *fakeClient) GetDetails(ctx context.Context, placeID string) (*places.Detail, error) {
	c.mu.Lock()
	c.detailCalls++
	c.mu.Unlock()
	if err := c.detailErr[placeID]; err != nil {
		return nil, err
	}
	return &places.Detail{PlaceID: placeID, Name: "Place " + placeID, PrimaryType: "venue"}, nil
}

func newTestCollector(resolver geocode.Resolver, client places.Client) *Collector {
	return NewCollector(resolver, client, logger.NewNopLogger(), 3, 5)
}

func TestCollectTagsCandidatesWithCategoryAndQuery(t *testing.T) {
	client := &fakeClient{searches: map[string][]string{
		"rooftop venue": {"p1", "p2"},
		"caterer":       {"p3"},
	}}
	c := newTestCollector(&fakeResolver{}, client)

	candidates, err := c.Collect(context.Background(), []vendor.CategoryQuery{
		{Category: "venue", Query: "rooftop venue"},
		{Category: "catering", Query: "caterer"},
	}, "Gurugram")

	assert.NoError(t, err)
	assert.Len(t, candidates, 3)

	byID := make(map[string]vendor.Candidate)
	for _, cand := range candidates {
		byID[cand.PlaceID] = cand
	}
	assert.Equal(t, "venue", byID["p1"].Category)
	assert.Equal(t, "rooftop venue", byID["p1"].Query)
	assert.Equal(t, "catering", byID["p3"].Category)
}

func TestCollectGeocodeFailureIsFatal(t *testing.T) {
	c := newTestCollector(&fakeResolver{err: geocode.ErrLocationUnresolvable}, &fakeClient{})

	_, err := c.Collect(context.Background(), []vendor.CategoryQuery{
		{Category: "venue", Query: "venue"},
	}, "nowhere at all")

	assert.ErrorIs(t, err, geocode.ErrLocationUnresolvable)
}

func TestCollectFailedCategoryDoesNotAffectOthers(t *testing.T) {
	client := &fakeClient{
		searches:  map[string][]string{"caterer": {"p1"}},
		searchErr: map[string]error{"rooftop venue": errors.New("upstream 500")},
	}
	c := newTestCollector(&fakeResolver{}, client)

	candidates, err := c.Collect(context.Background(), []vendor.CategoryQuery{
		{Category: "venue", Query: "rooftop venue"},
		{Category: "catering", Query: "caterer"},
	}, "Gurugram")

	assert.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, "catering", candidates[0].Category)
}

func TestCollectFailedDetailDropsOnlyThatCandidate(t *testing.T) {
	client := &fakeClient{
		searches:  map[string][]string{"venue": {"p1", "p2"}},
		detailErr: map[string]error{"p1": errors.New("not found")},
	}
	c := newTestCollector(&fakeResolver{}, client)

	candidates, err := c.Collect(context.Background(), []vendor.CategoryQuery{
		{Category: "venue", Query: "venue"},
	}, "Gurugram")

	assert.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, "p2", candidates[0].PlaceID)
}

func TestCollectSharedPlaceAppearsOncePerCategory(t *testing.T) {
	client := &fakeClient{searches: map[string][]string{
		"banquet hall":  {"p1"},
		"party caterer": {"p1"},
	}}
	c := newTestCollector(&fakeResolver{}, client)

	candidates, err := c.Collect(context.Background(), []vendor.CategoryQuery{
		{Category: "venue", Query: "banquet hall"},
		{Category: "catering", Query: "party caterer"},
	}, "Gurugram")

	assert.NoError(t, err)
	assert.Len(t, candidates, 2)
	// Details fetched once, shared between both categories.
	assert.Equal(t, 1, client.detailCalls)

	cats := map[string]bool{}
	for _, cand := range candidates {
		assert.Equal(t, "p1", cand.PlaceID)
		cats[cand.Category] = true
	}
	assert.True(t, cats["venue"])
	assert.True(t, cats["catering"])
}

func TestCollectNoQueries(t *testing.T) {
	c := newTestCollector(&fakeResolver{}, &fakeClient{})

	candidates, err := c.Collect(context.Background(), nil, "Gurugram")

	assert.NoError(t, err)
	assert.Empty(t, candidates)
}

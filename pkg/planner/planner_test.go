package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-eventplanner-be/internal/pkg/logger"
	"ai-eventplanner-be/pkg/llm"
)

// scriptedProvider returns canned responses in call order.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.Generate(ctx, "", options...)
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i >= len(p.responses) {
		return "", assert.AnError
	}
	return p.responses[i], nil
}

func newTestPlanner(provider llm.LLMProvider) *Planner {
	return NewPlanner(provider, logger.NewNopLogger())
}

func TestPlanCategoriesHappyPath(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`["venue", "catering", "photographer"]`,
		`{"venue": "rooftop event space", "catering": "corporate catering", "photographer": "event photographer"}`,
	}}

	queries, err := newTestPlanner(provider).PlanCategories(context.Background(), "corporate product launch")

	assert.NoError(t, err)
	assert.Len(t, queries, 3)
	assert.Equal(t, "venue", queries[0].Category)
	assert.Equal(t, "rooftop event space", queries[0].Query)
	assert.Equal(t, 2, provider.calls)
}

func TestPlanCategoriesExtractsJSONFromProse(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"Sure! Here are the categories:\n```json\n[\"venue\", \"catering\"]\n```\nHope that helps.",
		"Here you go: {\"venue\": \"banquet hall\", \"catering\": \"buffet catering\"} — good luck!",
	}}

	queries, err := newTestPlanner(provider).PlanCategories(context.Background(), "wedding")

	assert.NoError(t, err)
	assert.Len(t, queries, 2)
	assert.Equal(t, "banquet hall", queries[0].Query)
}

func TestPlanCategoriesDeduplicatesCaseInsensitive(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`["Venue", "venue", "VENUE", "catering"]`,
		`{"venue": "event hall", "catering": "caterer"}`,
	}}

	queries, err := newTestPlanner(provider).PlanCategories(context.Background(), "party")

	assert.NoError(t, err)
	assert.Len(t, queries, 2)
	// First occurrence wins, original casing preserved.
	assert.Equal(t, "Venue", queries[0].Category)
}

func TestPlanCategoriesMalformedCategoryResponse(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"I could not think of any categories, sorry.",
	}}

	_, err := newTestPlanner(provider).PlanCategories(context.Background(), "party")

	assert.ErrorIs(t, err, ErrMalformedPlan)
	assert.Equal(t, 1, provider.calls)
}

func TestPlanCategoriesMalformedQueryResponse(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`["venue"]`,
		"venue: somewhere nice",
	}}

	_, err := newTestPlanner(provider).PlanCategories(context.Background(), "party")

	assert.ErrorIs(t, err, ErrMalformedPlan)
}

func TestPlanCategoriesEmptyLabelList(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`[]`}}

	_, err := newTestPlanner(provider).PlanCategories(context.Background(), "party")

	assert.ErrorIs(t, err, ErrNoCategories)
}

func TestPlanCategoriesMissingQueryFallsBackToLabel(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`["venue", "florist"]`,
		`{"venue": "garden venue"}`,
	}}

	queries, err := newTestPlanner(provider).PlanCategories(context.Background(), "wedding")

	assert.NoError(t, err)
	assert.Len(t, queries, 2)
	assert.Equal(t, "florist", queries[1].Query)
}

func TestPlanCategoriesProviderError(t *testing.T) {
	provider := &scriptedProvider{errs: []error{assert.AnError}}

	_, err := newTestPlanner(provider).PlanCategories(context.Background(), "party")

	assert.Error(t, err)
}

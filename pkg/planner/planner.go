// Package planner turns a free-text event description into vendor
// categories and provider-search queries using an LLM.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-eventplanner-be/internal/pkg/logger"
	"ai-eventplanner-be/pkg/llm"
	"ai-eventplanner-be/pkg/vendor"
)

// ErrNoCategories means the model produced no usable category labels.
var ErrNoCategories = errors.New("planner: no categories derived from description")

// ErrMalformedPlan means the model response carried no parseable JSON.
// Parse failures are surfaced, never papered over with a fallback plan.
var ErrMalformedPlan = errors.New("planner: malformed model response")

type Planner struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewPlanner(provider llm.LLMProvider, log logger.ILogger) *Planner {
	return &Planner{
		provider: provider,
		logger:   log,
	}
}

// PlanCategories derives vendor categories from the event description, then
// translates each into a short search query. Both steps are separate model
// calls; a parse failure in either one fails the plan.
func (p *Planner) PlanCategories(ctx context.Context, description string) ([]vendor.CategoryQuery, error) {
	categories, err := p.deriveCategories(ctx, description)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	queries, err := p.deriveQueries(ctx, description, categories)
	if err != nil {
		return nil, err
	}

	result := make([]vendor.CategoryQuery, 0, len(categories))
	for _, category := range categories {
		query := queries[strings.ToLower(category)]
		if strings.TrimSpace(query) == "" {
			// The model skipped this label; the label itself still searches.
			query = category
		}
		result = append(result, vendor.CategoryQuery{Category: category, Query: query})
	}

	p.logger.Info("planner", "category plan built", map[string]interface{}{
		"categories": len(result),
	})
	return result, nil
}

func (p *Planner) deriveCategories(ctx context.Context, description string) ([]string, error) {
	prompt := buildCategoryPrompt(description)

	response, err := p.provider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("category derivation failed: %w", err)
	}

	jsonContent := extractJSONArray(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("%w: no JSON array in category response", ErrMalformedPlan)
	}

	var labels []string
	if err := json.Unmarshal([]byte(jsonContent), &labels); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}

	return dedupeCategories(labels), nil
}

func (p *Planner) deriveQueries(ctx context.Context, description string, categories []string) (map[string]string, error) {
	prompt := buildQueryPrompt(description, categories)

	response, err := p.provider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("query derivation failed: %w", err)
	}

	jsonContent := extractJSONObject(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("%w: no JSON object in query response", ErrMalformedPlan)
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(jsonContent), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}

	// Lower-cased keys so lookups survive casing drift between the two calls.
	queries := make(map[string]string, len(raw))
	for category, query := range raw {
		queries[strings.ToLower(strings.TrimSpace(category))] = strings.TrimSpace(query)
	}
	return queries, nil
}

// dedupeCategories drops blanks and case-insensitive duplicates, keeping
// the first occurrence. No fuzzy merging: "DJ" and "DJs" stay separate.
func dedupeCategories(labels []string) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		categories = append(categories, label)
	}
	return categories
}

func buildCategoryPrompt(description string) string {
	var prompt strings.Builder
	prompt.WriteString("You are an event planning assistant.\n")
	prompt.WriteString("List the vendor categories needed for the event below.\n")
	prompt.WriteString("Respond with ONLY a JSON array of short lowercase category labels, ")
	prompt.WriteString("for example: [\"venue\", \"catering\", \"photographer\"]\n\n")
	prompt.WriteString("Event description:\n")
	prompt.WriteString(description)
	return prompt.String()
}

func buildQueryPrompt(description string, categories []string) string {
	var prompt strings.Builder
	prompt.WriteString("You are an event planning assistant.\n")
	prompt.WriteString("For each vendor category below, write one short search query suitable ")
	prompt.WriteString("for a local business search engine, tailored to the event.\n")
	prompt.WriteString("Respond with ONLY a JSON object mapping category to query, for example:\n")
	prompt.WriteString("{\"venue\": \"rooftop event space\", \"catering\": \"corporate catering service\"}\n\n")
	prompt.WriteString("Categories: ")
	prompt.WriteString(strings.Join(categories, ", "))
	prompt.WriteString("\n\nEvent description:\n")
	prompt.WriteString(description)
	return prompt.String()
}

// extractJSONObject isolates a JSON object from surrounding prose.
func extractJSONObject(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

// extractJSONArray isolates a JSON array from surrounding prose.
func extractJSONArray(response string) string {
	startIdx := strings.Index(response, "[")
	endIdx := strings.LastIndex(response, "]")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

package dto

// GeneratePlanRequest is the payload for POST /api/v1/plans/generate.
type GeneratePlanRequest struct {
	Description  string   `json:"description" validate:"required,min=10"`
	Location     string   `json:"location" validate:"required"`
	EventType    string   `json:"event_type"`
	Date         string   `json:"date"`
	Budget       string   `json:"budget"`
	GuestCount   string   `json:"guest_count"`
	ExtraAPIKeys []string `json:"extra_api_keys" validate:"omitempty,max=5"`
	Limit        int      `json:"limit" validate:"omitempty,min=1,max=20"`
}

// VendorRecommendation is one ranked vendor inside a category.
type VendorRecommendation struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Address  string   `json:"address,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Website  string   `json:"website,omitempty"`
	Rating   float64  `json:"rating,omitempty"`
	Reviews  int      `json:"review_count,omitempty"`
	Types    []string `json:"types,omitempty"`
}

type TimelineItem struct {
	ID          string `json:"id"`
	Time        string `json:"time"`
	Task        string `json:"task"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
}

type BudgetBreakdown struct {
	Category    string `json:"category"`
	Amount      int    `json:"amount"`
	Percentage  int    `json:"percentage"`
	Description string `json:"description"`
}

// GeneratePlanResponse is the assembled event plan.
type GeneratePlanResponse struct {
	Title           string                            `json:"title"`
	EventType       string                            `json:"event_type"`
	Description     string                            `json:"description"`
	Location        string                            `json:"location"`
	Date            string                            `json:"date,omitempty"`
	Budget          string                            `json:"budget,omitempty"`
	GuestCount      string                            `json:"guest_count,omitempty"`
	Vendors         map[string][]VendorRecommendation `json:"vendors"`
	Timeline        []TimelineItem                    `json:"timeline"`
	BudgetBreakdown []BudgetBreakdown                 `json:"budget_breakdown"`
	Tips            []string                          `json:"tips"`
	Checklist       []string                          `json:"checklist"`
	CreatedAt       string                            `json:"created_at"`
}

// PublishEmbedPlaceMessage is the async re-embed queue payload.
type PublishEmbedPlaceMessage struct {
	PlaceID  string `json:"place_id"`
	Document string `json:"document"`
}

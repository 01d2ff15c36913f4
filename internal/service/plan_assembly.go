package service

import (
	"fmt"
	"strings"
	"time"

	"ai-eventplanner-be/internal/dto"
)

// Static planning templates keyed by event type, with a generic fallback.
// Vendor matching is dynamic; the surrounding checklist material is not.

type timelineTemplate struct {
	time        string
	task        string
	status      string
	description string
	deadline    string
}

var timelineTemplates = map[string][]timelineTemplate{
	"wedding": {
		{"6 months", "Book venue and send save-the-dates", "priority", "Secure your preferred venue and notify guests", "6 months before"},
		{"4 months", "Finalize catering and photography", "upcoming", "Lock in your menu and photographer", "4 months before"},
		{"3 months", "Send formal invitations", "upcoming", "Mail wedding invitations with RSVP details", "3 months before"},
		{"2 months", "Confirm all vendors", "upcoming", "Final confirmation calls with all vendors", "2 months before"},
		{"1 month", "Final headcount and details", "upcoming", "Provide final guest count and special requirements", "1 month before"},
		{"1 week", "Final rehearsal and setup", "upcoming", "Rehearsal dinner and venue setup confirmation", "1 week before"},
	},
	"birthday": {
		{"1 month", "Plan theme and guest list", "priority", "Decide on party theme and create guest list", "1 month before"},
		{"3 weeks", "Send invitations", "upcoming", "Send digital or physical invitations", "3 weeks before"},
		{"2 weeks", "Order decorations and cake", "upcoming", "Purchase decorations and order custom cake", "2 weeks before"},
		{"1 week", "Confirm RSVPs and finalize details", "upcoming", "Follow up on RSVPs and confirm all arrangements", "1 week before"},
		{"2 days", "Prepare venue and decorations", "upcoming", "Set up decorations and prepare party space", "2 days before"},
	},
	"corporate": {
		{"3 months", "Secure venue and set agenda", "priority", "Book corporate venue and outline event agenda", "3 months before"},
		{"2 months", "Arrange catering and AV equipment", "upcoming", "Book catering service and audio/visual setup", "2 months before"},
		{"6 weeks", "Send invitations to attendees", "upcoming", "Distribute formal invitations with agenda", "6 weeks before"},
		{"1 month", "Confirm speakers and presentations", "upcoming", "Final confirmation with all speakers", "1 month before"},
		{"1 week", "Final headcount and logistics", "upcoming", "Confirm attendance and final arrangements", "1 week before"},
	},
}

type budgetTemplate struct {
	category    string
	percentage  int
	description string
}

var budgetTemplates = map[string][]budgetTemplate{
	"wedding": {
		{"Venue", 40, "Reception and ceremony location"},
		{"Catering", 30, "Food and beverages"},
		{"Photography", 10, "Professional photography and videography"},
		{"Flowers & Decorations", 8, "Floral arrangements and decor"},
		{"Entertainment", 7, "Music and entertainment"},
		{"Miscellaneous", 5, "Transportation, favors, and other expenses"},
	},
	"birthday": {
		{"Venue", 35, "Party location rental"},
		{"Catering", 30, "Food, drinks, and cake"},
		{"Decorations", 20, "Themed decorations and supplies"},
		{"Entertainment", 10, "Activities and entertainment"},
		{"Miscellaneous", 5, "Party favors and extras"},
	},
	"corporate": {
		{"Venue", 35, "Meeting space and facilities"},
		{"Catering", 25, "Meals and refreshments"},
		{"AV Equipment", 15, "Audio/visual technology"},
		{"Speakers/Presenters", 15, "Speaker fees and travel"},
		{"Materials", 5, "Printed materials and supplies"},
		{"Miscellaneous", 5, "Transportation and extras"},
	},
}

// templateKey maps a free-form event type onto a template family.
func templateKey(eventType string) string {
	lower := strings.ToLower(eventType)
	switch {
	case strings.Contains(lower, "wedding"):
		return "wedding"
	case strings.Contains(lower, "birthday"):
		return "birthday"
	case strings.Contains(lower, "corporate"), strings.Contains(lower, "conference"), strings.Contains(lower, "launch"):
		return "corporate"
	default:
		return "birthday"
	}
}

func buildTimeline(eventType string) []dto.TimelineItem {
	template := timelineTemplates[templateKey(eventType)]
	timeline := make([]dto.TimelineItem, len(template))
	for i, item := range template {
		timeline[i] = dto.TimelineItem{
			ID:          fmt.Sprintf("timeline_%d", i),
			Time:        item.time,
			Task:        item.task,
			Status:      item.status,
			Description: item.description,
			Deadline:    item.deadline,
		}
	}
	return timeline
}

func buildBudgetBreakdown(eventType, budget string) []dto.BudgetBreakdown {
	template := budgetTemplates[templateKey(eventType)]
	total := parseBudget(budget)
	breakdown := make([]dto.BudgetBreakdown, len(template))
	for i, item := range template {
		breakdown[i] = dto.BudgetBreakdown{
			Category:    item.category,
			Amount:      total * item.percentage / 100,
			Percentage:  item.percentage,
			Description: item.description,
		}
	}
	return breakdown
}

// parseBudget pulls the digits out of a free-form budget string like
// "$10,000" or "around 50000". No digits defaults to 10000.
func parseBudget(budget string) int {
	total := 0
	found := false
	for _, r := range budget {
		if r >= '0' && r <= '9' {
			total = total*10 + int(r-'0')
			found = true
		}
	}
	if !found {
		return 10000
	}
	return total
}

func buildTips(eventType string) []string {
	switch templateKey(eventType) {
	case "wedding":
		return []string{
			"Book your venue at least 6 months in advance for popular dates",
			"Consider a weekday or off-season wedding to save on costs",
			"Create a detailed timeline and share it with all vendors",
			"Have a backup plan for outdoor ceremonies",
			"Don't forget to eat during your reception!",
		}
	case "corporate":
		return []string{
			"Test all AV equipment before the event starts",
			"Provide clear signage and directions for attendees",
			"Have a registration desk with name badges ready",
			"Plan networking breaks between presentations",
			"Follow up with attendees after the event",
		}
	default:
		return []string{
			"Send invitations at least 2-3 weeks in advance",
			"Consider dietary restrictions when planning the menu",
			"Have backup indoor activities if planning an outdoor party",
			"Delegate tasks to friends and family to reduce stress",
			"Take lots of photos to capture the memories",
		}
	}
}

func buildChecklist(eventType string) []string {
	switch templateKey(eventType) {
	case "wedding":
		return []string{
			"Venue booked and contract signed",
			"Catering menu finalized",
			"Photographer/videographer confirmed",
			"Wedding dress and attire ready",
			"Invitations sent and RSVPs tracked",
			"Marriage license obtained",
			"Rehearsal dinner planned",
			"Emergency kit prepared",
		}
	case "corporate":
		return []string{
			"Venue set up with proper seating",
			"AV equipment tested",
			"Catering confirmed and ready",
			"Speakers briefed and materials ready",
			"Registration area prepared",
			"Name badges and materials printed",
			"Welcome signage displayed",
			"Emergency contacts available",
		}
	default:
		return []string{
			"Guest list finalized",
			"Invitations sent",
			"Venue decorated",
			"Food and cake ordered",
			"Entertainment arranged",
			"Camera/photographer ready",
			"Party favors prepared",
			"Music playlist created",
		}
	}
}

func buildTitle(eventType, date string) string {
	monthYear := "TBD"
	if parsed, err := time.Parse(time.RFC3339, date); err == nil {
		monthYear = parsed.Format("January 2006")
	} else if parsed, err := time.Parse("2006-01-02", date); err == nil {
		monthYear = parsed.Format("January 2006")
	}

	switch templateKey(eventType) {
	case "wedding":
		return fmt.Sprintf("Wedding Celebration - %s", monthYear)
	case "corporate":
		return fmt.Sprintf("Corporate Event - %s", monthYear)
	default:
		if eventType == "" {
			eventType = "Event"
		}
		return fmt.Sprintf("%s - %s", eventType, monthYear)
	}
}

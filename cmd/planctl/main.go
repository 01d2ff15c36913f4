package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// planctl sends a plan request to a running server and pretty-prints the
// result. Handy for smoke-testing the full pipeline against live APIs.

type generateRequest struct {
	Description string   `json:"description"`
	Location    string   `json:"location"`
	EventType   string   `json:"event_type,omitempty"`
	Date        string   `json:"date,omitempty"`
	Budget      string   `json:"budget,omitempty"`
	GuestCount  string   `json:"guest_count,omitempty"`
	ExtraKeys   []string `json:"extra_api_keys,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Code    int             `json:"code"`
}

type planData struct {
	Title   string `json:"title"`
	Vendors map[string][]struct {
		Name    string  `json:"name"`
		Address string  `json:"address"`
		Rating  float64 `json:"rating"`
		Website string  `json:"website"`
	} `json:"vendors"`
	Timeline []struct {
		Time string `json:"time"`
		Task string `json:"task"`
	} `json:"timeline"`
	BudgetBreakdown []struct {
		Category   string `json:"category"`
		Amount     int    `json:"amount"`
		Percentage int    `json:"percentage"`
	} `json:"budget_breakdown"`
	Checklist []string `json:"checklist"`
	Tips      []string `json:"tips"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	description := flag.String("description", "", "event description (required)")
	location := flag.String("location", "", "event location (required)")
	eventType := flag.String("type", "", "event type hint (wedding, birthday, corporate...)")
	date := flag.String("date", "", "event date")
	budget := flag.String("budget", "", "total budget")
	guests := flag.String("guests", "", "expected guest count")
	limit := flag.Int("limit", 5, "vendors per category")
	timeout := flag.Duration("timeout", 3*time.Minute, "request timeout")
	flag.Parse()

	if *description == "" || *location == "" {
		color.Red("Usage: planctl -description \"...\" -location \"...\" [flags]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	color.Cyan("🚀 Requesting event plan from %s\n", *baseURL)

	reqBody, _ := json.Marshal(generateRequest{
		Description: *description,
		Location:    *location,
		EventType:   *eventType,
		Date:        *date,
		Budget:      *budget,
		GuestCount:  *guests,
		Limit:       *limit,
	})

	client := &http.Client{Timeout: *timeout}
	resp, err := client.Post(*baseURL+"/v1/plans/generate", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		color.Red("Request failed: %v", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		color.Red("Failed to read response: %v", err)
		os.Exit(1)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		color.Red("Malformed response (status %s): %s", resp.Status, string(body))
		os.Exit(1)
	}
	if !env.Success {
		color.Red("Server error (status %s): %s", resp.Status, env.Message)
		os.Exit(1)
	}

	var plan planData
	if err := json.Unmarshal(env.Data, &plan); err != nil {
		color.Red("Failed to decode plan: %v", err)
		os.Exit(1)
	}

	color.Green("Status: %s", resp.Status)
	color.Cyan("\n📋 %s\n", plan.Title)

	color.Yellow("Vendors:")
	for category, vendors := range plan.Vendors {
		color.White("  %s:", category)
		if len(vendors) == 0 {
			fmt.Println("    (no matches)")
			continue
		}
		for i, v := range vendors {
			fmt.Printf("    %d. %s (%.1f★) — %s\n", i+1, v.Name, v.Rating, v.Address)
			if v.Website != "" {
				fmt.Printf("       %s\n", v.Website)
			}
		}
	}

	color.Yellow("\nTimeline:")
	for _, item := range plan.Timeline {
		fmt.Printf("  %s  %s\n", item.Time, item.Task)
	}

	color.Yellow("\nBudget:")
	for _, item := range plan.BudgetBreakdown {
		fmt.Printf("  %-24s %d (%d%%)\n", item.Category, item.Amount, item.Percentage)
	}

	color.Yellow("\nChecklist:")
	for _, item := range plan.Checklist {
		fmt.Printf("  [ ] %s\n", item)
	}

	color.Yellow("\nTips:")
	for _, tip := range plan.Tips {
		fmt.Printf("  • %s\n", tip)
	}
}

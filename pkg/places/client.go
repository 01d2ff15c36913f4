// Package places wraps the Google Places v1 API: text search biased to a
// rectangle, then per-place detail fetches.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ai-eventplanner-be/pkg/geocode"
)

// searchFieldMask keeps search responses to bare ids; everything else
// comes from the cheaper per-place details call.
const searchFieldMask = "places.id"

const detailFieldMask = "displayName,formattedAddress,nationalPhoneNumber,websiteUri,rating,userRatingCount,primaryType,types,reviews"

// Detail is the subset of place fields the matcher consumes.
type Detail struct {
	PlaceID     string
	Name        string
	PrimaryType string
	Types       []string
	Address     string
	Phone       string
	Website     string
	Rating      float64
	RatingCount int
	Reviews     []string
}

type Client interface {
	SearchText(ctx context.Context, query string, rect geocode.Rect) ([]string, error)
	GetDetails(ctx context.Context, placeID string) (*Detail, error)
}

type googleClient struct {
	apiKey  string
	baseURL string
}

func NewClient(apiKey string) Client {
	return &googleClient{
		apiKey:  apiKey,
		baseURL: "https://places.googleapis.com/v1",
	}
}

type latLngPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type rectanglePayload struct {
	Low  latLngPayload `json:"low"`
	High latLngPayload `json:"high"`
}

type searchRequest struct {
	TextQuery    string `json:"textQuery"`
	LocationBias struct {
		Rectangle rectanglePayload `json:"rectangle"`
	} `json:"locationBias"`
}

type searchResponse struct {
	Places []struct {
		ID string `json:"id"`
	} `json:"places"`
}

func (c *googleClient) SearchText(ctx context.Context, query string, rect geocode.Rect) ([]string, error) {
	reqBody := searchRequest{TextQuery: query}
	reqBody.LocationBias.Rectangle = rectanglePayload{
		Low:  latLngPayload{Latitude: rect.Low.Lat, Longitude: rect.Low.Lon},
		High: latLngPayload{Latitude: rect.High.Lat, Longitude: rect.High.Lon},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/places:searchText", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", searchFieldMask)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var searchResp searchResponse
	if err := json.Unmarshal(bodyBytes, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]string, 0, len(searchResp.Places))
	for _, p := range searchResp.Places {
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

type detailResponse struct {
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress    string   `json:"formattedAddress"`
	NationalPhoneNumber string   `json:"nationalPhoneNumber"`
	WebsiteURI          string   `json:"websiteUri"`
	Rating              float64  `json:"rating"`
	UserRatingCount     int      `json:"userRatingCount"`
	PrimaryType         string   `json:"primaryType"`
	Types               []string `json:"types"`
	Reviews             []struct {
		Text struct {
			Text string `json:"text"`
		} `json:"text"`
	} `json:"reviews"`
}

func (c *googleClient) GetDetails(ctx context.Context, placeID string) (*Detail, error) {
	url := fmt.Sprintf("%s/places/%s", c.baseURL, placeID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", detailFieldMask)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("details request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var detailResp detailResponse
	if err := json.Unmarshal(bodyBytes, &detailResp); err != nil {
		return nil, fmt.Errorf("failed to decode details response: %w", err)
	}

	detail := &Detail{
		PlaceID:     placeID,
		Name:        detailResp.DisplayName.Text,
		PrimaryType: detailResp.PrimaryType,
		Types:       detailResp.Types,
		Address:     detailResp.FormattedAddress,
		Phone:       detailResp.NationalPhoneNumber,
		Website:     detailResp.WebsiteURI,
		Rating:      detailResp.Rating,
		RatingCount: detailResp.UserRatingCount,
	}
	for _, r := range detailResp.Reviews {
		if text := strings.TrimSpace(r.Text.Text); text != "" {
			detail.Reviews = append(detail.Reviews, text)
		}
	}
	return detail, nil
}

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type GeminiProvider struct {
	model string
}

type geminiRequestPart struct {
	Text string `json:"text"`
}

type geminiRequestContent struct {
	Parts []geminiRequestPart `json:"parts"`
}

type geminiRequest struct {
	Model                string               `json:"model"`
	Content              geminiRequestContent `json:"content"`
	OutputDimensionality int                  `json:"outputDimensionality,omitempty"`
}

type geminiResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

func NewGeminiProvider(model string) *GeminiProvider {
	if model == "" {
		model = "gemini-embedding-001"
	}
	return &GeminiProvider{model: model}
}

func (p *GeminiProvider) Generate(ctx context.Context, apiKey, text string, dimensionality int) ([]float32, error) {
	geminiReq := geminiRequest{
		Model: p.model,
		Content: geminiRequestContent{
			Parts: []geminiRequestPart{{Text: text}},
		},
		OutputDimensionality: dimensionality,
	}
	geminiReqJson, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:embedContent",
		p.model,
	)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(geminiReqJson))
	if err != nil {
		return nil, err
	}

	req.Header.Set("x-goog-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		switch ClassifyError(res.StatusCode, string(resByte)) {
		case KindQuota:
			return nil, fmt.Errorf("%w: code %d, body %s", ErrQuotaExhausted, res.StatusCode, string(resByte))
		case KindMalformed:
			return nil, fmt.Errorf("%w: code %d, body %s", ErrMalformedResponse, res.StatusCode, string(resByte))
		default:
			return nil, fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
		}
	}

	var resEmbedding geminiResponse
	if err := json.Unmarshal(resByte, &resEmbedding); err != nil {
		return nil, err
	}
	if len(resEmbedding.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding values", ErrMalformedResponse)
	}

	return resEmbedding.Embedding.Values, nil
}

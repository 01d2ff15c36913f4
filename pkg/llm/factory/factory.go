package factory

import (
	"ai-eventplanner-be/pkg/llm"
	"ai-eventplanner-be/pkg/llm/gemini"
	"fmt"
)

func NewLLMProvider(providerType, apiKey, modelName, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini":
		return gemini.NewGeminiProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

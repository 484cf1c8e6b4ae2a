package bot

import (
	"context"
	"fmt"
	"os"

	"github.com/baalimago/multibot/internal/models"
)

// Spec describes a built-in bot.
type Spec struct {
	BotName           string
	Category          string
	Logo              string
	Desc              string
	LoginURL          string
	RequiresLogin     bool
	MaxTokenLimit     int
	SupportsImage     bool
	SupportsUploadPDF bool
	IsPaid            bool
	IsReasoning       bool

	Model       string
	BaseURL     string
	APIKeyEnv   string
	Temperature float64
}

const (
	CategoryOpenAI     = "OpenAI"
	CategoryMicrosoft  = "Microsoft"
	CategoryMoonshot   = "Moonshot"
	CategoryPerplexity = "Perplexity"
	CategoryCustom     = "Custom Models"
)

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	moonshotBaseURL   = "https://api.moonshot.cn/v1"
	perplexityBaseURL = "https://api.perplexity.ai"
)

func perplexity(name, model string, limit int) Spec {
	return Spec{
		BotName:       name,
		Category:      CategoryPerplexity,
		Logo:          "perplexity.png",
		Desc:          fmt.Sprintf("%v served by Perplexity.", name),
		LoginURL:      "https://www.perplexity.ai",
		MaxTokenLimit: limit,
		Model:         model,
		BaseURL:       perplexityBaseURL,
		APIKeyEnv:     "PERPLEXITY_API_KEY",
		Temperature:   models.DefaultTemperature,
	}
}

// Builtins is the catalog of built-in bots, in display order.
func Builtins() []Spec {
	return []Spec{
		{
			BotName:       "ChatGPT-3.5-Turbo",
			Category:      CategoryOpenAI,
			Logo:          "openai.png",
			Desc:          "Fast general purpose model by OpenAI.",
			LoginURL:      "https://chat.openai.com",
			MaxTokenLimit: 16385,
			Model:         "gpt-3.5-turbo",
			BaseURL:       openAIBaseURL,
			APIKeyEnv:     "OPENAI_API_KEY",
			Temperature:   models.DefaultTemperature,
		},
		{
			BotName:       "ChatGPT-4-Turbo",
			Category:      CategoryOpenAI,
			Logo:          "openai.png",
			Desc:          "GPT-4 Turbo by OpenAI.",
			LoginURL:      "https://chat.openai.com",
			MaxTokenLimit: 128000,
			SupportsImage: true,
			IsPaid:        true,
			Model:         "gpt-4-turbo",
			BaseURL:       openAIBaseURL,
			APIKeyEnv:     "OPENAI_API_KEY",
			Temperature:   models.DefaultTemperature,
		},
		{
			BotName:       "ChatGPT-4o",
			Category:      CategoryOpenAI,
			Logo:          "openai.png",
			Desc:          "Multimodal flagship model by OpenAI.",
			LoginURL:      "https://chat.openai.com",
			MaxTokenLimit: 128000,
			SupportsImage: true,
			IsPaid:        true,
			Model:         "gpt-4o",
			BaseURL:       openAIBaseURL,
			APIKeyEnv:     "OPENAI_API_KEY",
			Temperature:   models.DefaultTemperature,
		},
		{
			BotName:       "Copilot",
			Category:      CategoryMicrosoft,
			Logo:          "copilot.png",
			Desc:          "Microsoft Copilot, requires a browser session.",
			LoginURL:      "https://copilot.microsoft.com",
			RequiresLogin: true,
			MaxTokenLimit: 4000,
			SupportsImage: true,
		},
		{
			BotName:           "Kimi",
			Category:          CategoryMoonshot,
			Logo:              "kimi.png",
			Desc:              "Long context model by Moonshot AI.",
			LoginURL:          "https://kimi.moonshot.cn",
			MaxTokenLimit:     128000,
			SupportsUploadPDF: true,
			Model:             "moonshot-v1-128k",
			BaseURL:           moonshotBaseURL,
			APIKeyEnv:         "MOONSHOT_API_KEY",
			Temperature:       0.3,
		},
		perplexity("Llama-3-Sonar-Large-32K-Chat", "llama-3-sonar-large-32k-chat", 32768),
		perplexity("Llama-3-Sonar-Large-32K-Online", "llama-3-sonar-large-32k-online", 28000),
		perplexity("Claude-3-Haiku", "claude-3-haiku-20240307", 200000),
		perplexity("Llama-3-70B-Instruct", "llama-3-70b-instruct", 8192),
		perplexity("Gemma-7B-IT", "gemma-7b-it", 8192),
		perplexity("LLaVA-v1.6-34B", "llava-v1.6-34b", 4096),
		perplexity("Mixtral-8x22B", "mixtral-8x22b-instruct", 16384),
	}
}

// FallbackSelection is used when nothing else selects a bot.
var FallbackSelection = []string{"ChatGPT-3.5-Turbo", "Copilot", "Kimi"}

// NewBuiltin returns a Handle for a built-in bot. The api key is read from
// the environment for each request.
func NewBuiltin(spec Spec, deps Deps) *Handle {
	getenv := deps.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	h := &Handle{
		BotName:           spec.BotName,
		Logo:              spec.Logo,
		Desc:              spec.Desc,
		RequiresLogin:     spec.RequiresLogin,
		MaxTokenLimit:     spec.MaxTokenLimit,
		SupportsImage:     spec.SupportsImage,
		SupportsUploadPDF: spec.SupportsUploadPDF,
		IsPaid:            spec.IsPaid,
		IsReasoning:       spec.IsReasoning,
		LoginURL:          spec.LoginURL,
		ModelID:           spec.BotName,
		deps:              deps,
	}
	h.resolve = func(ctx context.Context) (models.ModelConfig, *models.ResponseError) {
		if spec.RequiresLogin {
			return models.ModelConfig{}, &models.ResponseError{
				Code:    models.ErrCodeUnauthorized,
				Message: fmt.Sprintf("%v requires a login session at %v", spec.BotName, spec.LoginURL),
			}
		}
		key := getenv(spec.APIKeyEnv)
		if key == "" {
			return models.ModelConfig{}, &models.ResponseError{
				Code:    models.ErrCodeAPIKeyNotSet,
				Message: fmt.Sprintf("environment variable '%v' not set", spec.APIKeyEnv),
			}
		}
		return models.ModelConfig{
			Name:          spec.BotName,
			APIKind:       models.APIKindOpenAI,
			APIKey:        key,
			Model:         spec.Model,
			BaseURL:       spec.BaseURL,
			ContextWindow: spec.MaxTokenLimit,
			Temperature:   spec.Temperature,
			IsReasoning:   spec.IsReasoning,
		}, nil
	}
	return h
}

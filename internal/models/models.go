package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// APIKind selects the wire dialect spoken by a backend.
type APIKind string

const (
	APIKindOpenAI APIKind = "openai"
	APIKindAzure  APIKind = "azure"
)

// The options page persisted the human readable labels, so these are
// accepted as aliases when decoding.
var apiKindAliases = map[string]APIKind{
	"openai":                                   APIKindOpenAI,
	"openai / openai compatible apis / ollama": APIKindOpenAI,
	"azure":                                    APIKindAzure,
	"azure openai":                             APIKindAzure,
}

func (k *APIKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("failed to decode api kind: %w", err)
	}
	if s == "" {
		*k = APIKindOpenAI
		return nil
	}
	kind, ok := apiKindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return fmt.Errorf("unknown api kind: '%v'", s)
	}
	*k = kind
	return nil
}

const (
	DefaultContextWindow = 4000
	DefaultTemperature   = 0.7
	DefaultBaseURL       = "https://api.openai.com/v1"
)

var ErrInvalidConfig = errors.New("invalid model config")

// ModelConfig is one user configured backend. The json layout matches the
// persisted 'customModels' list.
type ModelConfig struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	APIKind       APIKind `json:"apiType"`
	APIKey        string  `json:"apiKey"`
	Model         string  `json:"model"`
	BaseURL       string  `json:"apiBaseUrl"`
	SupportsImage YesNo   `json:"supportImage"`
	ContextWindow int     `json:"contextWindow"`
	Temperature   float64 `json:"temperature"`
	IsReasoning   bool    `json:"isReasoning"`
	APIVersion    string  `json:"apiVersion,omitempty"`
}

// Validate the config, returning an error wrapping ErrInvalidConfig which
// lists every violated constraint.
func (c ModelConfig) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "name is empty")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		problems = append(problems, "apiKey is empty")
	}
	if strings.TrimSpace(c.Model) == "" {
		problems = append(problems, "model is empty")
	}
	if c.ContextWindow <= 0 {
		problems = append(problems, fmt.Sprintf("contextWindow must be positive, got: %v", c.ContextWindow))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("temperature must be within [0, 2], got: %v", c.Temperature))
	}
	switch c.APIKind {
	case APIKindAzure:
		if strings.TrimSpace(c.APIVersion) == "" {
			problems = append(problems, "apiVersion is required for azure")
		}
	case APIKindOpenAI, "":
		if c.APIVersion != "" {
			problems = append(problems, "apiVersion is only valid for azure")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown apiType: '%v'", c.APIKind))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() || u.Host == "" {
		problems = append(problems, fmt.Sprintf("apiBaseUrl is not an absolute url: '%v'", c.BaseURL))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, strings.Join(problems, ", "))
	}
	return nil
}

// WithDefaults returns a copy where unset optional fields have the same
// defaults as the options page used.
func (c ModelConfig) WithDefaults() ModelConfig {
	if c.APIKind == "" {
		c.APIKind = APIKindOpenAI
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ContextWindow == 0 {
		c.ContextWindow = DefaultContextWindow
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// YesNo is a bool which also decodes the "Yes"/"No" strings the options
// page stored.
type YesNo bool

func (y *YesNo) UnmarshalJSON(b []byte) error {
	var asBool bool
	if err := json.Unmarshal(b, &asBool); err == nil {
		*y = YesNo(asBool)
		return nil
	}
	var asStr string
	if err := json.Unmarshal(b, &asStr); err != nil {
		return fmt.Errorf("expected bool or 'Yes'/'No', got: %s", b)
	}
	*y = YesNo(strings.EqualFold(asStr, "yes") || strings.EqualFold(asStr, "true"))
	return nil
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// StreamDelta is the normalized payload of one SSE event. Both fields are
// empty rather than absent.
type StreamDelta struct {
	Content   string `json:"content"`
	Reasoning string `json:"reasoning_content"`
}

package copywriter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/angelmondragon/storefronts/pkg/config"
	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

var errAPIKeyRequired = errors.New("copywriter api key is required")

// Brief is what the copywriter knows about a business.
type Brief struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	City           string   `json:"city"`
	Region         string   `json:"region,omitempty"`
	Differentiator string   `json:"differentiator,omitempty"`
	ServiceAreas   []string `json:"service_areas,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	ReviewCount    int      `json:"review_count,omitempty"`
	ReviewSnippets []string `json:"review_snippets,omitempty"`
	Language       string   `json:"language,omitempty"`
}

// Draft is the unvalidated copy returned by the model.
type Draft struct {
	HeroTitle      string         `json:"hero_title"`
	HeroSubtitle   string         `json:"hero_subtitle"`
	Description    string         `json:"description"`
	SEOTitle       string         `json:"seo_title"`
	SEODescription string         `json:"seo_description"`
	Services       []ServiceDraft `json:"services"`
	FAQs           []FAQDraft     `json:"faqs"`
}

type ServiceDraft struct {
	Name             string `json:"name"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	SEODescription   string `json:"seo_description"`
}

type FAQDraft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Client calls an OpenAI-compatible chat completion endpoint in JSON mode.
type Client struct {
	http        *resty.Client
	model       string
	temperature float64
	language    string
}

// NewClient builds a copywriter client from config.
func NewClient(cfg config.CopywriterConfig, language string) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(key).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:        http,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		language:    language,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Temperature    float64           `json:"temperature"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate asks the model for storefront copy. The draft is returned as-is;
// acceptance thresholds and truncation are the caller's concern.
func (c *Client) Generate(ctx context.Context, brief Brief) (*Draft, error) {
	if c == nil || c.http == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "copywriter client not configured")
	}
	if brief.Language == "" {
		brief.Language = c.language
	}

	briefJSON, err := json.Marshal(brief)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal copy brief")
	}

	req := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(briefJSON)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	var result chatResponse
	var failure apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&failure).
		Post("/chat/completions")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute copy request")
	}
	if resp.IsError() {
		msg := strings.TrimSpace(failure.Error.Message)
		if msg == "" {
			msg = strings.TrimSpace(string(resp.Body()))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode(), msg), "copy request failed")
	}
	if len(result.Choices) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "copy response has no choices")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")

	var draft Draft
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode copy document")
	}
	return &draft, nil
}

const systemPrompt = `You write website copy for local businesses.
The user message is a JSON brief. Reply with one JSON object, written in the brief's language, with keys:
hero_title, hero_subtitle, description, seo_title, seo_description,
services (array of 4 to 8 objects with name, short_description, long_description, seo_description),
faqs (array of 6 to 10 objects with question, answer).
Keep seo_title under 70 characters and seo_description under 160.
Never state opening hours, prices or guarantees that are not in the brief.`

package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services/normalize"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// Config holds the Gemini judge configuration
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Adapter implements the oracle.Judge interface against the Gemini
// generateContent API.
type Adapter struct {
	config     Config
	httpClient *http.Client
}

// New creates a new Gemini adapter
func New(config Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the judge name
func (a *Adapter) Name() string {
	return "gemini"
}

// Judge asks the model for a payout decision on the event. The model is
// instructed to answer in strict JSON; anything it gets wrong is
// repaired downstream by the gateway's coercion.
func (a *Adapter) Judge(ctx context.Context, event models.SourceEvent, bucket normalize.Bucket) (*models.Decision, error) {
	prompt := buildPrompt(event)

	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.config.BaseURL, a.config.Model, a.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned HTTP %d: %s", httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	return parseDecision(genResp.Candidates[0].Content.Parts[0].Text)
}

// buildPrompt renders the risk-officer prompt for one event.
func buildPrompt(event models.SourceEvent) string {
	rawJSON, err := json.Marshal(event.Raw)
	if err != nil {
		rawJSON = []byte("{}")
	}
	location := fmt.Sprintf("%.4f, %.4f", event.Lat, event.Lon)

	return fmt.Sprintf(`ROLE: You are the Chief Risk Officer for an Autonomous Insurance Fund.

INPUT DATA:
- Type: %s
- Raw Telemetry: %s
- Location: %s

TASK:
Analyze the telemetry. Cross-reference with your internal knowledge of the location's population density and infrastructure.

CRITERIA FOR PAYOUT:
1. Is this a CATASTROPHIC event? (Not just 'bad', but 'system-critical')
2. Is it near a populated area (>50,000 people)?
3. Is the confidence of the data source high?

OUTPUT FORMAT (JSON ONLY):
{
    "authorization": "YES" or "NO",
    "decision": "PAYOUT" or "DENY",
    "confidence_score": 0-100,
    "reasoning": "One sentence summary of why.",
    "payout_amount_usdc": "Calculated amount based on severity (max 10000)"
}

CRITICAL: The "authorization" field must be EXACTLY "YES" or "NO".
Only "YES" authorizes fund release. Any other value defaults to "NO".`,
		event.DisasterType, rawJSON, location)
}

// parseDecision extracts a decision from the model's text answer,
// tolerating markdown code fences around the JSON.
func parseDecision(text string) (*models.Decision, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var payload decisionPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse decision JSON: %w", err)
	}

	return &models.Decision{
		Authorization:    models.Authorization(payload.Authorization),
		Verdict:          models.DecisionVerdict(payload.Decision),
		Confidence:       intConfidence(payload.ConfidenceScore),
		Reasoning:        payload.Reasoning,
		PayoutAmountUSDC: stringAmount(payload.PayoutAmountUSDC),
	}, nil
}

// intConfidence normalizes a confidence that may arrive as a JSON number or string.
func intConfidence(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return 0
		}
		return int(f)
	}
	return 0
}

// stringAmount normalizes an amount that may arrive as a JSON string or number.
func stringAmount(v interface{}) string {
	switch amount := v.(type) {
	case string:
		return strings.TrimSpace(amount)
	case float64:
		return strconv.Itoa(int(amount))
	case json.Number:
		return amount.String()
	}
	return ""
}

// Gemini request/response types

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

type decisionPayload struct {
	Authorization    string      `json:"authorization"`
	Decision         string      `json:"decision"`
	ConfidenceScore  interface{} `json:"confidence_score"`
	Reasoning        string      `json:"reasoning"`
	PayoutAmountUSDC interface{} `json:"payout_amount_usdc"`
}

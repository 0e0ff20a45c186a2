package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DefaultOllamaURL is the generation endpoint used when none is configured.
	DefaultOllamaURL = "http://localhost:11434/api/generate"
	defaultTimeout   = 300 * time.Second
	maxErrorBody     = 4096
)

// Ollama implements Generator against Ollama's native /api/generate endpoint.
type Ollama struct {
	model       string
	baseURL     string
	generateURL string
	client      *http.Client
}

// OllamaOption configures an Ollama client.
type OllamaOption func(*Ollama)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) OllamaOption {
	return func(o *Ollama) { o.client = c }
}

// WithTimeout sets the bound on a single outbound call.
func WithTimeout(d time.Duration) OllamaOption {
	return func(o *Ollama) {
		if d > 0 {
			o.client.Timeout = d
		}
	}
}

// NewOllama creates a client for the given endpoint. See ResolveEndpoint for
// the URL forms accepted.
func NewOllama(endpoint, model string, opts ...OllamaOption) *Ollama {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultOllamaURL
	}
	base, generate := ResolveEndpoint(endpoint)
	o := &Ollama{
		model:       model,
		baseURL:     base,
		generateURL: generate,
		client:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NormalizeBaseURL strips a trailing slash and any /api/... suffix.
func NormalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	u = strings.TrimSuffix(u, "/api/generate")
	u = strings.TrimSuffix(u, "/api/tags")
	u = strings.TrimSuffix(u, "/api")
	return u
}

// ResolveEndpoint splits a configured URL into the server base and the URL
// generation requests are posted to. A bare server URL, or one ending in
// /api, /api/generate or /api/tags, maps onto Ollama's native routes. Any
// other path is taken as a gateway route and posted to unchanged; model
// listing then goes to /api/tags on the same host.
func ResolveEndpoint(endpoint string) (base, generate string) {
	trimmed := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	u, err := url.Parse(trimmed)
	if err != nil || u.Path == "" || isNativePath(u.Path) {
		base = NormalizeBaseURL(trimmed)
		return base, base + "/api/generate"
	}
	origin := url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host}
	return origin.String(), trimmed
}

func isNativePath(p string) bool {
	return strings.HasSuffix(p, "/api") ||
		strings.HasSuffix(p, "/api/generate") ||
		strings.HasSuffix(p, "/api/tags")
}

// Model returns the configured model name.
func (o *Ollama) Model() string { return o.model }

// GenerateURL returns the URL generation requests are posted to.
func (o *Ollama) GenerateURL() string { return o.generateURL }

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateBody struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// Generate issues one blocking completion request.
func (o *Ollama) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	payload, err := json.Marshal(generateBody{
		Model:  o.model,
		Prompt: req.Prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.generateURL, bytes.NewReader(payload))
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	respBody, err := o.do(httpReq)
	if err != nil {
		return GenerateResponse{}, err
	}

	if !gjson.ValidBytes(respBody) {
		return GenerateResponse{}, fmt.Errorf("parsing response: invalid JSON")
	}
	text := gjson.GetBytes(respBody, "response")
	if !text.Exists() || text.Type != gjson.String {
		return GenerateResponse{}, ErrMissingResponse
	}

	return GenerateResponse{
		Text:         text.String(),
		PromptTokens: int(gjson.GetBytes(respBody, "prompt_eval_count").Int()),
		EvalTokens:   int(gjson.GetBytes(respBody, "eval_count").Int()),
	}, nil
}

// ListModels returns the names of the models installed on the server.
func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	respBody, err := o.do(httpReq)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(respBody) {
		return nil, fmt.Errorf("parsing response: invalid JSON")
	}

	var names []string
	for _, m := range gjson.GetBytes(respBody, "models.#.name").Array() {
		names = append(names, m.String())
	}
	return names, nil
}

func (o *Ollama) do(req *http.Request) ([]byte, error) {
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

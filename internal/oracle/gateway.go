// Package oracle wraps the external reasoning service behind a retrying,
// validating gateway. The gateway is the single boundary at which oracle
// unreliability (timeouts, malformed JSON, placeholder sources) is converted
// into deterministic fallback values; nothing above it ever sees a raw
// transport error.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Raymond2967/faircost/internal/llm"
)

// Gateway issues chat and extraction calls against an OpenAI-compatible
// backend with bounded retries and schema validation.
type Gateway struct {
	Client llm.Client
	// Model used for structured extraction and analysis calls.
	Model string
	// SearchModel used for web-research style calls; falls back to Model.
	SearchModel string
	// Cache, when non-nil, memoizes responses keyed by model+prompt digest
	// so re-runs are deterministic and cheap.
	Cache *Cache
	// MaxAttempts bounds the extraction retry loop. Zero means 2.
	MaxAttempts int
	// Backoff is the fixed delay between attempts. Zero means 1s.
	Backoff time.Duration
	// Sleep is injectable for tests; nil means time.Sleep honoring ctx.
	Sleep func(ctx context.Context, d time.Duration)
}

// ErrNoChoices indicates the backend returned an empty completion.
var ErrNoChoices = errors.New("oracle returned no choices")

const extractSystemPrompt = "You are a data extraction specialist. Extract structured data from the provided content according to the specified schema. Return ONLY valid JSON without any additional text or formatting."

const searchSystemPrompt = "You are a web research assistant. Search for and provide accurate information about the user's query. Provide specific data points, URLs, and sources when possible. Focus on official and authoritative sources."

func (g *Gateway) attempts() int {
	if g.MaxAttempts > 0 {
		return g.MaxAttempts
	}
	return 2
}

func (g *Gateway) backoff() time.Duration {
	if g.Backoff > 0 {
		return g.Backoff
	}
	return time.Second
}

func (g *Gateway) sleep(ctx context.Context, d time.Duration) {
	if g.Sleep != nil {
		g.Sleep(ctx, d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (g *Gateway) searchModel() string {
	if g.SearchModel != "" {
		return g.SearchModel
	}
	return g.Model
}

// Chat performs a single system+user completion and returns the trimmed
// assistant content. Responses are cached when a cache is configured.
func (g *Gateway) Chat(ctx context.Context, model, system, user string, temperature float32, maxTokens int) (string, error) {
	if g.Client == nil || strings.TrimSpace(model) == "" {
		return "", errors.New("oracle gateway not configured")
	}
	if g.Cache != nil {
		key := KeyFrom(model, system+"\n\n"+user)
		if raw, ok := g.Cache.Get(key); ok {
			return string(raw), nil
		}
	}
	resp, err := g.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("oracle call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrNoChoices
	}
	if g.Cache != nil {
		g.Cache.Save(KeyFrom(model, system+"\n\n"+user), []byte(out))
	}
	return out, nil
}

// Search asks the oracle to research a query. Any failure returns the
// caller-supplied fallback directly, without retry: search output is itself
// only model input, never structured data.
func (g *Gateway) Search(ctx context.Context, query, fallback string) string {
	out, err := g.Chat(ctx, g.searchModel(), searchSystemPrompt, "Please search for information about: "+query, 0.3, 1500)
	if err != nil {
		log.Debug().Str("stage", "oracle").Err(err).Msg("search failed, using fallback content")
		return fallback
	}
	return out
}

// Extract asks the oracle to pull structured data matching the literal
// example-JSON schema out of content. Each attempt validates that every
// top-level schema field is present and that no source field carries a known
// placeholder domain. After the retry budget is exhausted the fallback is
// returned unchanged; this path never returns an error.
func Extract[T any](ctx context.Context, g *Gateway, description, content, schema string, fallback T) T {
	attempts := g.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		raw, err := g.Chat(ctx, g.Model, extractSystemPrompt,
			"Extract data according to this schema: "+schema+"\n\nFrom this content:\n"+content, 0.1, 2000)
		if err == nil {
			var out T
			if err = decodeValidated(raw, schema, &out); err == nil {
				return out
			}
		}
		log.Warn().
			Str("stage", "oracle").
			Str("extraction", description).
			Int("attempt", attempt).
			Err(err).
			Msg("extraction attempt failed")
		if attempt < attempts {
			g.sleep(ctx, g.backoff())
		}
	}
	log.Debug().Str("stage", "oracle").Str("extraction", description).Msg("using fallback data")
	return fallback
}

// decodeValidated strips markdown fences, checks schema-field presence and
// placeholder sources, then unmarshals into out.
func decodeValidated(raw, schema string, out any) error {
	body := StripFences(raw)
	var got map[string]any
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		return fmt.Errorf("parse oracle json: %w", err)
	}
	fields, err := schemaFields(schema)
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}
	for _, f := range fields {
		if _, ok := got[f]; !ok {
			return fmt.Errorf("missing required field %q", f)
		}
	}
	if f, bad := placeholderSource(got); bad {
		return fmt.Errorf("placeholder source in field %q", f)
	}
	return json.Unmarshal([]byte(body), out)
}

// schemaFields parses the example-JSON schema and returns its top-level keys.
func schemaFields(schema string) ([]string, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(schema), &obj); err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(obj))
	for k := range obj {
		fields = append(fields, k)
	}
	return fields, nil
}

// placeholderPatterns are fabricated-citation markers the oracle is known to
// emit when it has no real source.
var placeholderPatterns = []string{
	"example.com",
	"placeholder",
	"official-university-source.com",
}

// placeholderSource scans source-named fields for known placeholder patterns.
func placeholderSource(m map[string]any) (field string, bad bool) {
	for k, v := range m {
		if !strings.Contains(strings.ToLower(k), "source") {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		low := strings.ToLower(s)
		for _, p := range placeholderPatterns {
			if strings.Contains(low, p) {
				return k, true
			}
		}
	}
	return "", false
}

// StripFences removes a surrounding markdown code fence (``` or ```json) so
// fenced oracle replies still parse as JSON.
func StripFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	out = strings.TrimPrefix(out, "```")
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		// Drop a language tag such as "json" on the opening fence line.
		first := strings.TrimSpace(out[:i])
		if len(first) <= 10 && !strings.ContainsAny(first, "{[") {
			out = out[i+1:]
		}
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}

// ValidSourceURL reports whether s looks like a real, navigable citation: an
// absolute http(s) URL with a host, free of placeholder patterns and of
// non-ASCII ideographs the oracle sometimes substitutes for a URL.
func ValidSourceURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	low := strings.ToLower(s)
	for _, p := range placeholderPatterns {
		if strings.Contains(low, p) {
			return false
		}
	}
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return false
		}
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && strings.Contains(u.Host, ".")
}

// Package aiproc implements the optional AI Co-Processor (spec §4.K): a
// single rate-limited gateway in front of a chat-completions model (text
// batch scoring) and a vision model (face/subject framing scoring), used
// by the Audio and Visual Analyzers when AI.Enabled is set. Every call
// degrades to the analyzer's deterministic heuristic on failure — the
// pipeline never blocks on AI availability.
package aiproc

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/bobarin/clipforge/internal/config"
)

// Processor is the shared AI gateway. One Processor is shared by every
// analyzer invocation in a job so the rate limiter actually bounds
// aggregate request volume, mirroring the token-bucket idiom in
// starsinc1708-TorrX's rateLimitMiddleware. The limiter only spaces out
// request starts; calls are not serialized, so concurrent callers (the
// Audio and Visual Analyzers run in parallel) can have requests in flight
// at the same time.
type Processor struct {
	cfg      config.AIConfig
	openai   *openai.Client
	genai    *genai.Client
	limiter  *rate.Limiter
}

func New(ctx context.Context, cfg config.AIConfig) (*Processor, error) {
	p := &Processor{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), 1),
	}
	if !cfg.Enabled {
		return p, nil
	}

	p.openai = openai.NewClient(cfg.APIKey)

	if isGeminiModel(cfg.VisionModel) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
		if err != nil {
			return nil, fmt.Errorf("failed to construct genai client: %w", err)
		}
		p.genai = client
	}

	return p, nil
}

func (p *Processor) Enabled() bool { return p.cfg.Enabled }

func isGeminiModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "gemini")
}

// withRetry wraps a single AI call with the rate limiter, then up to 3
// exponential-backoff retries against transient (5xx/network) failures,
// falling back from the primary model to the backup model when the
// primary's call still fails (non-retryable, or retries exhausted).
func (p *Processor) withRetry(ctx context.Context, op func(model string) error) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	primaryErr := retryTransient(ctx, func() error { return op(p.cfg.Model) })
	if primaryErr == nil {
		return nil
	}
	if p.cfg.BackupModel == "" || p.cfg.BackupModel == p.cfg.Model {
		return primaryErr
	}
	return retryTransient(ctx, func() error { return op(p.cfg.BackupModel) })
}

func retryTransient(ctx context.Context, op func() error) error {
	var lastErr error
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableAIError(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 4 * time.Second
	bo.MaxElapsedTime = 0

	err := backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, 3), ctx))
	if err != nil && lastErr != nil {
		return lastErr
	}
	return err
}

func isRetryableAIError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "eof")
}

// TextBatch scores up to 10 texts in a single chat-completions call and
// returns one score in [0,1] per input, in order. The Audio Analyzer uses
// this for batched emotion scoring (spec §4.E) rather than one call per
// segment.
func (p *Processor) TextBatch(ctx context.Context, texts []string, instruction string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) > 10 {
		return nil, fmt.Errorf("TextBatch accepts at most 10 texts per call, got %d", len(texts))
	}

	prompt := buildBatchPrompt(texts, instruction)
	var raw string

	err := p.withRetry(ctx, func(model string) error {
		resp, err := p.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: "You output only a JSON array of numbers, nothing else."},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0.2,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty response from chat completion")
		}
		raw = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return nil, err
	}

	scores, err := parseScoreList(raw, len(texts))
	if err != nil {
		return nil, fmt.Errorf("failed to parse AI batch response: %w", err)
	}
	return scores, nil
}

func buildBatchPrompt(texts []string, instruction string) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nScore each of the following, in order, from 0.0 (low) to 1.0 (high). Return a JSON array of numbers, one per item, same order and length.\n\n")
	for i, t := range texts {
		fmt.Fprintf(&b, "%d. %q\n", i+1, t)
	}
	return b.String()
}

// parseScoreList tries four strategies in order, the way a production
// system tolerant of a chat model's occasional formatting drift has to:
// a fenced ```json block, a bare JSON array, a comma-separated line, and
// finally just the first N numeric tokens found anywhere in the text.
func parseScoreList(raw string, n int) ([]float64, error) {
	if scores, ok := tryFencedJSON(raw, n); ok {
		return scores, nil
	}
	if scores, ok := tryBareJSON(raw, n); ok {
		return scores, nil
	}
	if scores, ok := tryCommaSeparated(raw, n); ok {
		return scores, nil
	}
	if scores, ok := tryFirstNNumbers(raw, n); ok {
		return scores, nil
	}
	return nil, fmt.Errorf("no parseable score list in response: %q", truncate(raw, 200))
}

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")

func tryFencedJSON(raw string, n int) ([]float64, bool) {
	m := fencedJSONRe.FindStringSubmatch(raw)
	if len(m) < 2 {
		return nil, false
	}
	return decodeJSONArray(m[1], n)
}

var bareJSONRe = regexp.MustCompile(`(?s)\[[^\[\]]*\]`)

func tryBareJSON(raw string, n int) ([]float64, bool) {
	m := bareJSONRe.FindString(raw)
	if m == "" {
		return nil, false
	}
	return decodeJSONArray(m, n)
}

func decodeJSONArray(s string, n int) ([]float64, bool) {
	var vals []float64
	if err := json.Unmarshal([]byte(s), &vals); err != nil {
		return nil, false
	}
	return normalizeScores(vals, n)
}

func tryCommaSeparated(raw string, n int) ([]float64, bool) {
	line := strings.TrimSpace(raw)
	if !strings.Contains(line, ",") {
		return nil, false
	}
	parts := strings.Split(line, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, false
		}
		vals = append(vals, f)
	}
	return normalizeScores(vals, n)
}

var numberRe = regexp.MustCompile(`-?\d+(\.\d+)?`)

func tryFirstNNumbers(raw string, n int) ([]float64, bool) {
	matches := numberRe.FindAllString(raw, -1)
	if len(matches) < n {
		return nil, false
	}
	vals := make([]float64, 0, n)
	for _, m := range matches[:n] {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil, false
		}
		vals = append(vals, f)
	}
	return normalizeScores(vals, n)
}

func normalizeScores(vals []float64, n int) ([]float64, bool) {
	if len(vals) != n {
		return nil, false
	}
	out := make([]float64, n)
	for i, v := range vals {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = v
	}
	return out, true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

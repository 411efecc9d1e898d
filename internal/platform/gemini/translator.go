package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/palabras/palabras-api/internal/config"
	"github.com/palabras/palabras-api/internal/translation"
	"google.golang.org/genai"
)

// noAnswer is what the model is asked to reply when it cannot translate.
const noAnswer = "NONE"

const promptText = `Translate the following {{.From}} vocabulary term into {{.To}}.
Reply with the single most common translation only, without quotes, notes or punctuation.
If the term cannot be translated, reply with {{.NoAnswer}}.

Term: {{.Text}}`

var promptTemplate = template.Must(template.New("translation").Parse(promptText))

type promptData struct {
	Text     string
	From     string
	To       string
	NoAnswer string
}

// contentGenerator is the subset of *genai.Models the translator uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Translator implements translation.Translator using the Gemini API.
type Translator struct {
	logger    *slog.Logger
	config    config.LLMConfig
	generator contentGenerator
	sleep     func(ctx context.Context, d time.Duration) error
	rng       *rand.Rand
}

var _ translation.Translator = (*Translator)(nil)

// NewTranslator creates a Translator with a Gemini API client.
func NewTranslator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Translator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", translation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", translation.ErrInvalidConfig, err)
	}

	return newTranslator(client.Models, logger, cfg)
}

func newTranslator(gen contentGenerator, logger *slog.Logger, cfg config.LLMConfig) (*Translator, error) {
	if gen == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", translation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", translation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Translator{
		logger:    logger.With(slog.String("component", "gemini_translator")),
		config:    cfg,
		generator: gen,
		sleep:     sleepContext,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Translate implements translation.Translator.
func (t *Translator) Translate(ctx context.Context, req translation.Request) (string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", translation.ErrEmptyText
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return "", err
	}

	reply, err := t.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}

	candidate := cleanReply(reply)
	if candidate == "" || strings.EqualFold(candidate, noAnswer) {
		t.logger.InfoContext(ctx, "model has no translation", slog.String("text", text))
		return "", translation.ErrNoTranslation
	}
	return candidate, nil
}

func buildPrompt(req translation.Request) (string, error) {
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, promptData{
		Text:     strings.TrimSpace(req.Text),
		From:     req.From,
		To:       req.To,
		NoAnswer: noAnswer,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// cleanReply keeps the first line of the reply without wrapping quotes or
// trailing punctuation.
func cleanReply(reply string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(reply), "\n")
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "\"'`“”«»")
	line = strings.TrimRight(line, ".!;:")
	return strings.TrimSpace(line)
}

// callWithRetry calls the model up to MaxRetries+1 times. Transport errors
// are retried with exponential backoff and jitter; malformed or blocked
// replies are returned immediately.
func (t *Translator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := t.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := t.config.RetryDelaySeconds
	if baseDelay < 1 {
		baseDelay = 1
	}

	for attempt := 0; ; attempt++ {
		reply, err := t.call(ctx, prompt)
		if err == nil {
			t.logger.DebugContext(ctx, "gemini call succeeded", slog.Int("attempt", attempt+1))
			return reply, nil
		}

		if !errors.Is(err, translation.ErrTransientFailure) {
			t.logger.WarnContext(ctx, "permanent gemini error, not retrying", slog.String("error", err.Error()))
			return "", err
		}
		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				translation.ErrTransientFailure, maxRetries, err)
		}

		// delay = base * 2^attempt * [0.5, 1.0)
		backoff := float64(baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + t.rng.Float64()*0.5) * float64(time.Second))

		t.logger.InfoContext(ctx, "retrying gemini call",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		if err := t.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%w: %v", translation.ErrTransientFailure, err)
		}
	}
}

func (t *Translator) call(ctx context.Context, prompt string) (string, error) {
	resp, err := t.generator.GenerateContent(ctx, t.config.ModelName, genai.Text(prompt), nil)
	switch {
	case err != nil:
		return "", fmt.Errorf("%w: %v", translation.ErrTransientFailure, err)
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", translation.ErrInvalidResponse)
	case len(resp.Candidates) == 0 || resp.Candidates[0] == nil:
		return "", fmt.Errorf("%w: no candidates", translation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", translation.ErrContentBlocked
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content", translation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

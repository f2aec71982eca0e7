package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"golang.org/x/time/rate"

	"anchor/internal/align"
	"anchor/internal/config"
	"anchor/internal/logging"
	"anchor/internal/services"
)

// batchSize bounds cues per request; large batches risk truncated output.
const batchSize = 40

// Translator renders cue text into a target language while preserving index
// correspondence.
type Translator interface {
	Translate(ctx context.Context, cues []align.Cue, sourceLang, targetLang string) ([]align.Cue, error)
}

// Client is a Translator backed by an OpenAI-compatible endpoint.
type Client struct {
	api     openai.Client
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger

	call func(ctx context.Context, params responses.ResponseNewParams) (string, error)
}

// New builds a Client from the translation configuration section.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.Translation.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "new", "translation api key not configured", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base := strings.TrimSpace(cfg.Translation.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	rpm := cfg.Translation.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}

	c := &Client{
		api:     openai.NewClient(opts...),
		model:   cfg.Translation.Model,
		limiter: rate.NewLimiter(rate.Limit(rpm)/60, 1),
		logger:  logger,
	}
	c.call = c.callModel
	return c, nil
}

type translatedLine struct {
	Index int    `json:"index" jsonschema_description:"Index copied verbatim from the input line"`
	Text  string `json:"text" jsonschema_description:"Translated subtitle text, line breaks preserved"`
}

type translationPayload struct {
	Lines []translatedLine `json:"lines"`
}

var translationSchema = generateSchema[translationPayload]()

const translatorInstructions = `You translate subtitle lines for speech alignment.

You will receive a JSON array of subtitle lines, each with an index and text.
Translate every line into the requested target language.

Rules:
- Return one output line per input line, carrying the input index verbatim.
- Translate how the line would actually be spoken; prefer natural spoken
  phrasing over literal rendering.
- Preserve line breaks inside a line.
- Keep proper nouns recognizable.
- Never merge, split, reorder, or drop lines. Never add commentary.`

// Translate renders every cue into targetLang. Timing and indices are
// copied from the input; only text changes. A line the model fails to return
// keeps its original text so the output stays index-aligned.
func (c *Client) Translate(ctx context.Context, cues []align.Cue, sourceLang, targetLang string) ([]align.Cue, error) {
	if len(cues) == 0 {
		return nil, nil
	}
	targetLang = strings.TrimSpace(targetLang)
	if targetLang == "" {
		return nil, services.Wrap(services.ErrValidation, "translate", "translate", "empty target language", nil)
	}

	out := make([]align.Cue, len(cues))
	copy(out, cues)
	byIndex := make(map[int]int, len(cues))
	for i, cue := range cues {
		byIndex[cue.Index] = i
	}

	start := time.Now()
	missing := 0
	for lo := 0; lo < len(cues); lo += batchSize {
		hi := lo + batchSize
		if hi > len(cues) {
			hi = len(cues)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		lines, err := c.translateBatch(ctx, cues[lo:hi], sourceLang, targetLang)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			pos, ok := byIndex[line.Index]
			if !ok {
				continue
			}
			if text := strings.TrimSpace(line.Text); text != "" {
				out[pos].Text = text
			}
		}
		for i := lo; i < hi; i++ {
			if out[i].Text == cues[i].Text {
				missing++
			}
		}
	}

	if missing > 0 {
		c.logger.Warn("translation left lines untranslated",
			logging.Int("untranslated", missing),
			logging.Int("total", len(cues)),
		)
	}
	c.logger.Info("ghost translation complete",
		logging.Int("cues", len(cues)),
		logging.String("target_language", targetLang),
		logging.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (c *Client) translateBatch(ctx context.Context, cues []align.Cue, sourceLang, targetLang string) ([]translatedLine, error) {
	input, err := buildBatchInput(cues, sourceLang, targetLang)
	if err != nil {
		return nil, err
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "SubtitleTranslation",
			Schema:      translationSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Translated subtitle lines JSON"),
			Type:        "json_schema",
		},
	}
	params := responses.ResponseNewParams{
		Model:        c.model,
		Instructions: openai.String(translatorInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	outputText, err := c.call(ctx, params)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "translate", "translate batch", "translation request failed", err)
	}

	var payload translationPayload
	if err := decodeModelJSON(outputText, &payload); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "translate", "translate batch", "malformed translation response", err)
	}
	return payload.Lines, nil
}

func (c *Client) callModel(ctx context.Context, params responses.ResponseNewParams) (string, error) {
	const maxRetries = 3
	rateLimitWaits := []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second}
	serverErrorWaits := []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.api.Responses.New(ctx, params)
		if err == nil {
			return resp.OutputText(), nil
		}
		lastErr = err
		var wait time.Duration
		switch {
		case isRateLimitError(err):
			wait = rateLimitWaits[attempt]
		case isServerError(err):
			wait = serverErrorWaits[attempt]
		default:
			return "", err
		}
		if attempt == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", fmt.Errorf("translation failed after %d attempts: %w", maxRetries, lastErr)
}

type batchLine struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func buildBatchInput(cues []align.Cue, sourceLang, targetLang string) (string, error) {
	lines := make([]batchLine, len(cues))
	for i, cue := range cues {
		lines[i] = batchLine{Index: cue.Index, Text: cue.Text}
	}
	encoded, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if sourceLang = strings.TrimSpace(sourceLang); sourceLang != "" {
		fmt.Fprintf(&sb, "Source language: %s\n", sourceLang)
	}
	fmt.Fprintf(&sb, "Target language: %s\n\n", targetLang)
	sb.Write(encoded)
	return sb.String(), nil
}

// decodeModelJSON unmarshals model output, tolerating stray text around the
// JSON object.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return fmt.Errorf("empty model output")
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output")
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

package scorer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Nishanth-cyber/Job-search/internal/logger"
)

const defaultGeminiModel = "gemini-2.5-flash"

const geminiInstruction = `You are a recruiting assistant. Rate how well the attached resume fits the job description.
Respond ONLY with a JSON object of this exact shape:
{
  "score": integer from 0 to 100,
  "summary": "one paragraph assessment",
  "key_strengths": ["..."],
  "missing_skills": ["..."],
  "suggestions": ["..."]
}`

// contentGenerator is the part of *genai.Models the scorer depends on
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiScorer ask Gemini to rate the resume, pdf is sent inline and text resumes as prompt text
type GeminiScorer struct {
	models contentGenerator
	model  string
	log    *zap.Logger
}

// NewGeminiScorer creates a Gemini API backed scorer
func NewGeminiScorer(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiScorer, error) {
	models, err := newGeminiModels(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return newGeminiScorer(models, model, log), nil
}

func newGeminiModels(ctx context.Context, apiKey string) (contentGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client.Models, nil
}

func geminiModelOrDefault(model string) string {
	if model = strings.TrimSpace(model); model == "" {
		return defaultGeminiModel
	}
	return model
}

func newGeminiScorer(models contentGenerator, model string, log *zap.Logger) *GeminiScorer {
	return &GeminiScorer{models: models, model: geminiModelOrDefault(model), log: logger.OrNop(log)}
}

// Score implements Scorer
func (g *GeminiScorer) Score(ctx context.Context, req Request) (*Result, error) {
	if len(req.Resume) == 0 {
		return nil, scorerError("resume is empty", nil)
	}

	resumePart, err := resumePart(req)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: "Job description:\n" + req.JobText},
			resumePart,
		},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: geminiInstruction}},
		},
	}

	g.log.Debug("gemini scorer request",
		zap.String("model", g.model),
		zap.String("file_name", req.FileName),
		zap.Int("job_text_length", utf8.RuneCountInString(req.JobText)),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, scorerError("gemini request failed", err)
	}

	raw := responseText(resp)
	g.log.Debug("gemini scorer response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, maxLogLength)),
	)
	if raw == "" {
		return nil, scorerError("gemini returned empty response", nil)
	}

	return parsePayload([]byte(raw))
}

func resumePart(req Request) (*genai.Part, error) {
	ext := strings.ToLower(filepath.Ext(req.FileName))
	switch {
	case ext == ".pdf" || req.ContentType == "application/pdf":
		return &genai.Part{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: req.Resume}}, nil
	case ext == ".txt" || strings.HasPrefix(req.ContentType, "text/"):
		if !utf8.Valid(req.Resume) {
			return nil, scorerError("text resume is not valid utf-8", nil)
		}
		return &genai.Part{Text: "Resume:\n" + string(req.Resume)}, nil
	default:
		return nil, scorerError(fmt.Sprintf("resume type %q is not supported by gemini scorer", ext), nil)
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(builder.String())
}

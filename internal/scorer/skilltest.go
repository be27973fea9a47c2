package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Nishanth-cyber/Job-search/internal/logger"
)

// QuestionCount is the number of questions of a skills test
const QuestionCount = 5

const (
	// answers at least this long count as complete
	completeAnswerLength = 40
	completenessPoints   = 60
	skillPointsPerAnswer = 8
	maxSkillPoints       = 40
)

var fallbackQuestions = []string{
	"Summarize your most relevant project for this role.",
	"Describe a recent technical challenge you solved and how.",
	"How do you keep your skills up to date?",
	"Outline your approach to debugging complex issues.",
	"Why are you a good fit for this position?",
}

var questionNumbering = regexp.MustCompile(`^\s*(?:Q|q)?\d+[:.)]\s*`)

// TestJob is the part of a job post a skills test is built from
type TestJob struct {
	Description string
	Skills      []string
}

// SkillTest build and grade the skills test of a job. Evaluate always return a score within 0..100.
type SkillTest interface {
	Questions(ctx context.Context, job TestJob) ([]string, error)
	Evaluate(ctx context.Context, job TestJob, answers []string) (int, error)
}

// HeuristicSkillTest ask about the required skills and grade answers by length and skill mentions
type HeuristicSkillTest struct{}

// Questions implements SkillTest
func (HeuristicSkillTest) Questions(_ context.Context, job TestJob) ([]string, error) {
	return DefaultQuestions(job.Skills), nil
}

// Evaluate implements SkillTest
func (HeuristicSkillTest) Evaluate(_ context.Context, job TestJob, answers []string) (int, error) {
	return HeuristicScore(job.Skills, answers), nil
}

// DefaultQuestions ask one question per required skill, padded with generic questions
func DefaultQuestions(skills []string) []string {
	questions := make([]string, 0, QuestionCount)
	for _, s := range skills {
		if len(questions) == QuestionCount {
			break
		}
		if s = strings.TrimSpace(s); s != "" {
			questions = append(questions, fmt.Sprintf("Explain your experience with %s.", s))
		}
	}
	return padQuestions(questions)
}

func padQuestions(questions []string) []string {
	for _, q := range fallbackQuestions {
		if len(questions) >= QuestionCount {
			break
		}
		questions = append(questions, q)
	}
	return questions[:QuestionCount]
}

// HeuristicScore give up to 60 points for complete answers and up to 40 for answers
// that mention a required skill
func HeuristicScore(skills []string, answers []string) int {
	complete, skillHits := 0, 0
	for _, a := range answers {
		a = strings.TrimSpace(a)
		if utf8.RuneCountInString(a) >= completeAnswerLength {
			complete++
		}
		lower := strings.ToLower(a)
		for _, s := range skills {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" && strings.Contains(lower, s) {
				skillHits++
				break
			}
		}
	}

	base := int(math.Round(float64(complete) / QuestionCount * completenessPoints))
	bonus := min(maxSkillPoints, skillHits*skillPointsPerAnswer)
	return min(100, base+bonus)
}

const questionInstruction = `You are an HR assistant. Based on the job description and required skills, craft 5 concise,
practical questions to quickly evaluate a candidate's fit.
Respond ONLY with a JSON array of 5 strings, no numbering.`

const evaluationInstruction = `You are an HR evaluator. Given the job description and required skills, rate the candidate's
short answers from 0 to 100 for overall fit and relevance. Consider correctness, depth, clarity and alignment
with the required skills.
Respond ONLY with a JSON object of this exact shape: {"score": integer from 0 to 100}`

// GeminiSkillTest let Gemini write the questions and grade the answers.
// When Gemini fails the heuristic test is used instead, a candidate is never blocked by it.
type GeminiSkillTest struct {
	models   contentGenerator
	model    string
	fallback HeuristicSkillTest
	log      *zap.Logger
}

// NewGeminiSkillTest creates a Gemini API backed skills test
func NewGeminiSkillTest(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiSkillTest, error) {
	models, err := newGeminiModels(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return newGeminiSkillTest(models, model, log), nil
}

func newGeminiSkillTest(models contentGenerator, model string, log *zap.Logger) *GeminiSkillTest {
	return &GeminiSkillTest{models: models, model: geminiModelOrDefault(model), log: logger.OrNop(log)}
}

// Questions implements SkillTest
func (g *GeminiSkillTest) Questions(ctx context.Context, job TestJob) ([]string, error) {
	raw, err := g.generate(ctx, questionInstruction, jobPrompt(job), 0.3)
	if err != nil {
		if ctx.Err() != nil {
			return nil, scorerError("question generation cancelled", ctx.Err())
		}
		g.log.Warn("gemini question generation failed, using default questions", zap.Error(err))
		return g.fallback.Questions(ctx, job)
	}

	var generated []string
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		g.log.Warn("gemini questions are not a json array, using default questions",
			zap.String("response_preview", logger.TruncateForLog(raw, maxLogLength)))
		return g.fallback.Questions(ctx, job)
	}

	questions := make([]string, 0, QuestionCount)
	for _, q := range generated {
		if q = strings.TrimSpace(questionNumbering.ReplaceAllString(q, "")); q != "" {
			questions = append(questions, q)
		}
		if len(questions) == QuestionCount {
			break
		}
	}
	if len(questions) == 0 {
		return g.fallback.Questions(ctx, job)
	}
	return padQuestions(questions), nil
}

// Evaluate implements SkillTest
func (g *GeminiSkillTest) Evaluate(ctx context.Context, job TestJob, answers []string) (int, error) {
	var prompt strings.Builder
	prompt.WriteString(jobPrompt(job))
	prompt.WriteString("\n\nAnswers:")
	for i, a := range answers {
		fmt.Fprintf(&prompt, "\n%d) %s", i+1, strings.TrimSpace(a))
	}

	raw, err := g.generate(ctx, evaluationInstruction, prompt.String(), 0.2)
	if err != nil {
		if ctx.Err() != nil {
			return 0, scorerError("answer evaluation cancelled", ctx.Err())
		}
		g.log.Warn("gemini answer evaluation failed, using heuristic score", zap.Error(err))
		return g.fallback.Evaluate(ctx, job, answers)
	}

	var payload struct {
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil || payload.Score == nil {
		g.log.Warn("gemini evaluation has no score, using heuristic score",
			zap.String("response_preview", logger.TruncateForLog(raw, maxLogLength)))
		return g.fallback.Evaluate(ctx, job, answers)
	}

	return max(0, min(100, int(math.Round(*payload.Score)))), nil
}

func (g *GeminiSkillTest) generate(ctx context.Context, instruction, prompt string, temperature float32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(temperature),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		},
	}
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}
	raw := responseText(resp)
	if raw == "" {
		return "", fmt.Errorf("gemini returned empty response")
	}
	return raw, nil
}

func jobPrompt(job TestJob) string {
	return fmt.Sprintf("Job description:\n%s\n\nRequired skills: %s",
		strings.TrimSpace(job.Description), strings.Join(job.Skills, ", "))
}

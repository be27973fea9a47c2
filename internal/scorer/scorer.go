// Package scorer rate a resume against a job description using an external analysis service.
package scorer

import (
	"context"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
)

// Request is the input of a single scoring call
type Request struct {
	Resume      []byte
	FileName    string
	ContentType string
	JobText     string
}

// Result is a validated scorer answer, Score is always within 0..100
type Result struct {
	Score         int
	Summary       *string
	Strengths     []string
	MissingSkills []string
	Suggestions   []string
}

// Scorer rates a resume. Every failure is returned as apperror with CodeScorer.
type Scorer interface {
	Score(ctx context.Context, req Request) (*Result, error)
}

// Func adapt an ordinary function to Scorer
type Func func(ctx context.Context, req Request) (*Result, error)

// Score calls f(ctx, req)
func (f Func) Score(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

func scorerError(msg string, err error) error {
	return apperror.NewError(apperror.CodeScorer, msg, err)
}

const defaultContentType = "application/octet-stream"

func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return defaultContentType
	}
	return ct
}

package translation_test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/iav0207/fcards2-sub001/internal/domain"
)

type fakeProvider struct {
	name        string
	evalResult  *domain.EvaluationResult
	translation string
	err         error
	delay       time.Duration
	calls       atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) wait(ctx context.Context) error {
	f.calls.Add(1)
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeProvider) EvaluateTranslation(ctx context.Context, _ domain.EvaluationRequest) (*domain.EvaluationResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	r := *f.evalResult
	return &r, nil
}

func (f *fakeProvider) GenerateTranslation(ctx context.Context, _ domain.GenerationRequest) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	return f.translation, f.err
}

type fakeBaseline struct{}

func (fakeBaseline) Evaluate(domain.EvaluationRequest) domain.EvaluationResult {
	return domain.EvaluationResult{Correct: true, Score: 1, Feedback: "baseline"}
}

func (fakeBaseline) Generate(req domain.GenerationRequest) string {
	return "[" + req.Content + "]"
}

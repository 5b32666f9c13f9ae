// Package matching is the terminal stage after a credit score is produced.
// Only a placeholder exists; job matching itself is not implemented.
package matching

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/logger"
	"github.com/anandbmuley/deep-signal/internal/report"
)

const StatusPending = "pending"

// Result is what a consumer reports back for an analyzed candidate.
type Result struct {
	CandidateID string  `json:"candidate_id"`
	Status      string  `json:"status"`
	CreditScore float64 `json:"candidate_credit_score"`
	Message     string  `json:"message"`
}

// Consumer receives every finished analysis report.
type Consumer interface {
	Consume(ctx context.Context, analysis *report.AnalysisReport) (*Result, error)
}

// Placeholder acknowledges reports without matching them to jobs.
type Placeholder struct {
	logger *zap.Logger
}

func NewPlaceholder(log *zap.Logger) *Placeholder {
	return &Placeholder{logger: logger.WithFields(log, zap.String(logger.FieldAgent, "matcher"))}
}

func (p *Placeholder) Consume(ctx context.Context, analysis *report.AnalysisReport) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, errors.New("no analysis results to match against")
	}

	p.logger.Debug("matching deferred", zap.String(logger.FieldCandidate, analysis.CandidateID))

	return &Result{
		CandidateID: analysis.CandidateID,
		Status:      StatusPending,
		CreditScore: analysis.CreditScore,
		Message:     "Job matching is not available yet",
	}, nil
}

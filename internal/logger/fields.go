package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldAgent is the structured log field key for the analyzer slot ("resume", "github").
	FieldAgent = "agent"
	// FieldCandidate is the structured log field key for the anonymous candidate id.
	FieldCandidate = "candidate_id"
	// FieldRun identifies a single orchestration run.
	FieldRun = "run_id"
	// FieldProvider is the structured log field key for an external data provider.
	FieldProvider = "provider"
	// FieldModel is the structured log field key for an LLM model identifier.
	FieldModel = "model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger, defaulting to
// a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns the fields that identify an analysis step.
// Empty values are dropped.
func CommonFields(agent, candidateID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldAgent, Value: agent},
		StringField{Key: FieldCandidate, Value: candidateID},
	)
}

// WithCommonFields attaches the agent and candidate fields to the logger.
func WithCommonFields(logger *zap.Logger, agent, candidateID string) *zap.Logger {
	return WithFields(logger, CommonFields(agent, candidateID)...)
}

// ProviderFields describes an external collaborator such as an LLM or a code-hosting API.
func ProviderFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

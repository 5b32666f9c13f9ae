// Package gemini implements the language-model collaborators on Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/anandbmuley/deep-signal/internal/candidate"
	"github.com/anandbmuley/deep-signal/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

//go:embed profile.schema.json
var profileSchema string

const defaultMaxLogLength = 200

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01"}

// Extractor structures resume text with Gemini.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	now       func() time.Time
	newID     func() string
}

func NewExtractor(generator contentGenerator, log *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Extractor{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     candidate.NewID,
	}
}

// Extract returns a validated profile with a fresh anonymous id and
// metadata type "resume". Name, email and phone stay on the returned value only.
func (e *Extractor) Extract(ctx context.Context, resumeText string) (*candidate.Profile, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, errors.New("resume text must not be empty")
	}

	today := e.now()
	system := buildPrompt(today)
	message := "Resume Text:\n" + resumeText

	e.logger.Debug("gemini extraction request",
		zap.String(logger.FieldModel, e.generator.Model()),
		zap.Int("resume_length", utf8.RuneCountInString(resumeText)),
	)

	raw, err := e.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(redact(raw), e.maxLogLen)),
	)

	profile, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	profile.CandidateID = e.newID()
	profile.Metadata = map[string]any{"type": "resume"}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("extracted profile: %w", err)
	}

	e.logger.Info("resume structured",
		zap.String(logger.FieldCandidate, profile.CandidateID),
		zap.Int("skills", len(profile.Skills)),
		zap.Int("positions", len(profile.WorkExperience)),
	)

	return profile, nil
}

func buildPrompt(today time.Time) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Extract the resume into JSON. Today's date is {{TODAY}}."
	}
	return strings.ReplaceAll(template, "{{TODAY}}", today.Format("2006-01-02"))
}

func parseResponse(raw string) (*candidate.Profile, error) {
	cleaned := extractJSON(raw)

	if err := validateSchema(cleaned); err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var profile candidate.Profile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       dateHook,
		Result:           &profile,
	})
	if err != nil {
		return nil, fmt.Errorf("create profile decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	profile.GitHubUsername = normalizeUsername(profile.GitHubUsername)
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Email = strings.TrimSpace(profile.Email)
	profile.Phone = strings.TrimSpace(profile.Phone)
	for i := range profile.Skills {
		profile.Skills[i].Name = strings.TrimSpace(profile.Skills[i].Name)
	}

	return &profile, nil
}

func validateSchema(document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(profileSchema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("parse gemini response: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return fmt.Errorf("gemini response does not match profile schema: %s", strings.Join(msgs, "; "))
}

// dateHook decodes ISO dates. Empty strings and "present"/"current" become nil for optional dates.
func dateHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	value := strings.TrimSpace(reflect.ValueOf(data).String())

	switch to {
	case reflect.TypeOf(&time.Time{}):
		switch strings.ToLower(value) {
		case "", "present", "current", "now", "null":
			return nil, nil
		}
		return parseDate(value)
	case reflect.TypeOf(time.Time{}):
		return parseDate(value)
	default:
		return data, nil
	}
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func normalizeUsername(value string) string {
	value = strings.TrimSpace(value)
	for _, prefix := range []string{"https://", "http://", "www.", "github.com/"} {
		value = strings.TrimPrefix(value, prefix)
	}
	value = strings.TrimPrefix(value, "@")
	if idx := strings.Index(value, "/"); idx != -1 {
		value = value[:idx]
	}
	return value
}

// redact hides the contact fields before a response preview is logged.
func redact(raw string) string {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return ""
	}
	for _, key := range []string{"name", "email", "phone"} {
		if _, ok := data[key]; ok {
			data[key] = "[redacted]"
		}
	}
	bytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(bytes)
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// Package ai defines the language-model collaborators used around the scoring core.
package ai

import (
	"context"

	"github.com/anandbmuley/deep-signal/internal/candidate"
)

// Extractor turns free-form resume text into a structured candidate profile.
// The returned profile carries a freshly generated anonymous id.
type Extractor interface {
	Extract(ctx context.Context, resumeText string) (*candidate.Profile, error)
}

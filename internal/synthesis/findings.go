package synthesis

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/anandbmuley/deep-signal/internal/agents/greenwash"
	"github.com/anandbmuley/deep-signal/internal/agents/skilldecay"
	"github.com/anandbmuley/deep-signal/internal/report"
)

const (
	fallbackFinding        = "Limited data available for detailed analysis"
	fallbackRecommendation = "Standard interview process recommended"
	escalation             = "Recommend detailed reference checks and skill verification"
)

var categoryRecommendations = map[string]string{
	greenwash.CategoryGreenwashing: "Request specific code samples and conduct live coding assessment",
	skilldecay.CategoryUnverified:  "Ask for specific project examples demonstrating claimed skills",
}

func keyRank(key string) int {
	switch key {
	case skilldecay.Key:
		return 0
	case greenwash.Key:
		return 1
	default:
		return 2
	}
}

// signal reads a typed signal. Values that went through JSON arrive as
// generic maps and are decoded by their mapstructure tags.
func signal[T any](signals map[string]any, key string) (T, bool) {
	var out T
	raw, ok := signals[key]
	if !ok || raw == nil {
		return out, false
	}
	if typed, ok := raw.(T); ok {
		return typed, true
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, false
	}
	if err := dec.Decode(raw); err != nil {
		return out, false
	}
	return out, true
}

// number renders a float the way the report reader expects it: 97.5, 100.0.
func number(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' {
			return s
		}
	}
	return s + ".0"
}

func findings(th FindingThresholds, keys []string, reports map[string]*report.AgentReport) []string {
	out := make([]string, 0, 4)
	for _, key := range keys {
		switch key {
		case skilldecay.Key:
			out = append(out, resumeFindings(th, reports[key].Signals)...)
		case greenwash.Key:
			out = append(out, githubFindings(th, reports[key].Signals)...)
		}
	}
	if len(out) == 0 {
		out = append(out, fallbackFinding)
	}
	return out
}

func resumeFindings(th FindingThresholds, signals map[string]any) []string {
	var out []string

	verification, hasVerification := signal[skilldecay.Verification](signals, skilldecay.SignalVerification)
	// an empty skill list says nothing about currency or verification
	if hasVerification && verification.TotalSkills == 0 {
		return out
	}

	if decay, ok := signal[float64](signals, skilldecay.SignalAverageDecay); ok {
		switch {
		case decay >= th.StrongDecay:
			out = append(out, fmt.Sprintf("Strong skill currency with average decay score of %s/100", number(decay)))
		case decay < th.ConcerningDecay:
			out = append(out, fmt.Sprintf("Concerning skill decay detected (avg score: %s/100)", number(decay)))
		}
	}

	if hasVerification {
		rate := verification.VerificationRate
		switch {
		case rate >= th.HighVerification:
			out = append(out, fmt.Sprintf("High skill verification rate (%s%%)", number(rate)))
		case rate < th.LowVerification:
			out = append(out, fmt.Sprintf("Low skill verification rate (%s%%)", number(rate)))
		}
	}

	return out
}

func githubFindings(th FindingThresholds, signals map[string]any) []string {
	var out []string

	if gw, ok := signal[greenwash.GreenwashingSignal](signals, greenwash.SignalGreenwashing); ok {
		switch {
		case gw.Score < th.GenuineGreenwashing:
			out = append(out, "Genuine GitHub contributions verified - low green-washing risk")
		case gw.Score > th.HighGreenwashing:
			out = append(out, fmt.Sprintf("High green-washing indicators detected (%d/100)", gw.Score))
		}
	}

	if repos, ok := signal[greenwash.RepositorySignal](signals, greenwash.SignalRepositories); ok {
		if repos.OwnedRepos > th.PresenceOwnedRepos && repos.TotalStars > th.PresenceStars {
			out = append(out, fmt.Sprintf("Strong GitHub presence with %d owned repos and %d stars", repos.OwnedRepos, repos.TotalStars))
		}
		if repos.ForkRatio > th.HighForkRatio {
			out = append(out, fmt.Sprintf("High fork ratio (%s%%) - limited original work", number(repos.ForkRatio)))
		}
	}

	return out
}

func (s *Synthesizer) recommendations(score float64, tier report.RiskLevel, keys []string, reports map[string]*report.AgentReport) []string {
	out := make([]string, 0, 4)
	seen := map[string]struct{}{}
	add := func(text string) {
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}

	switch {
	case score >= s.config.StrongBand:
		add("Strong candidate - proceed with interview process")
	case score >= s.config.GoodBand:
		add("Good candidate - verify key technical claims in interview")
	case score >= s.config.ModerateBand:
		add("Moderate candidate - conduct thorough technical assessment")
	default:
		add("Proceed with caution - significant concerns identified")
	}

	if tier.AtLeast(report.RiskHigh) {
		add(escalation)
	}

	for _, key := range keys {
		for _, risk := range reports[key].RiskFactors {
			if !risk.Severity.AtLeast(report.RiskHigh) {
				continue
			}
			if risk.Category == skilldecay.CategorySkillDecay {
				skill, _ := risk.Details["skill"].(string)
				if skill == "" {
					skill = "key skills"
				}
				add(fmt.Sprintf("Verify current proficiency in %s", skill))
				continue
			}
			if text, ok := categoryRecommendations[risk.Category]; ok {
				add(text)
			}
		}
	}

	if len(out) == 0 {
		add(fallbackRecommendation)
	}
	return out
}

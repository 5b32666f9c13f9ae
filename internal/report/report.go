// Package report defines the shared vocabulary of risk and the reports produced by the scoring agents.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// RiskLevel is an ordered severity. The zero value is RiskLow.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

var riskNames = [...]string{"low", "medium", "high", "critical"}

func (r RiskLevel) String() string {
	if r < RiskLow || r > RiskCritical {
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
	return riskNames[r]
}

// AtLeast reports whether r is as severe as other or more.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r >= other
}

// ParseRiskLevel converts a lowercase or uppercase level name into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for i, name := range riskNames {
		if name == needle {
			return RiskLevel(i), nil
		}
	}
	return RiskLow, fmt.Errorf("unknown risk level %q", s)
}

func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	level, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// RiskFactor is a single itemized risk. ScoreImpact is always negative.
type RiskFactor struct {
	Category    string         `json:"category"`
	Severity    RiskLevel      `json:"severity"`
	Description string         `json:"description"`
	ScoreImpact float64        `json:"score_impact"`
	Details     map[string]any `json:"details,omitempty"`
}

// NewRiskFactor builds a risk factor, forcing the impact to be a non-zero penalty.
func NewRiskFactor(category string, severity RiskLevel, impact float64, description string, details map[string]any) RiskFactor {
	impact = -math.Abs(impact)
	if impact == 0 {
		impact = -1
	}
	return RiskFactor{
		Category:    category,
		Severity:    severity,
		Description: description,
		ScoreImpact: impact,
		Details:     details,
	}
}

// Penalty is the absolute cost of the risk.
func (r RiskFactor) Penalty() float64 {
	return math.Abs(r.ScoreImpact)
}

// AgentReport is the output of a single analyzer.
type AgentReport struct {
	AgentName   string         `json:"agent_name"`
	Score       float64        `json:"score"`
	Confidence  float64        `json:"confidence"`
	RiskFactors []RiskFactor   `json:"risk_factors"`
	Signals     map[string]any `json:"signals"`
	Timestamp   time.Time      `json:"timestamp"`
}

// CountBySeverity returns how many risk factors the report carries at the given severity.
func (r *AgentReport) CountBySeverity(level RiskLevel) int {
	if r == nil {
		return 0
	}
	count := 0
	for _, risk := range r.RiskFactors {
		if risk.Severity == level {
			count++
		}
	}
	return count
}

// Metadata carries aggregate counts of a synthesized report.
type Metadata struct {
	AgentsUsed        []string `json:"agents_used"`
	TotalRiskFactors  int      `json:"total_risk_factors"`
	AverageConfidence float64  `json:"average_confidence"`
}

// AnalysisReport is the final output of one orchestration run.
type AnalysisReport struct {
	CandidateID      string                  `json:"candidate_id"`
	CreditScore      float64                 `json:"candidate_credit_score"`
	AgentReports     map[string]*AgentReport `json:"agent_reports"`
	OverallRiskLevel RiskLevel               `json:"overall_risk_level"`
	KeyFindings      []string                `json:"key_findings"`
	Recommendations  []string                `json:"recommendations"`
	Metadata         Metadata                `json:"metadata"`
	GeneratedAt      time.Time               `json:"generated_at"`
}

// DumpToTmpFile writes the report as indented JSON into a new temporary file
// and returns its name.
func (a *AnalysisReport) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "deep-signal_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

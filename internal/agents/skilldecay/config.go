package skilldecay

// Config holds the tunable policy of the skill decay analyzer.
type Config struct {
	HalfLifeMonths float64 `mapstructure:"half-life-months"`
	DaysPerMonth   float64 `mapstructure:"days-per-month"`
	// UndatedScore is assigned to skills without a last-used date.
	UndatedScore float64 `mapstructure:"undated-score"`

	DecayRiskThreshold   float64 `mapstructure:"decay-risk-threshold"`
	SevereDecayThreshold float64 `mapstructure:"severe-decay-threshold"`
	DecayRiskImpact      float64 `mapstructure:"decay-risk-impact"`
	SevereDecayImpact    float64 `mapstructure:"severe-decay-impact"`

	LowVerificationRate    float64 `mapstructure:"low-verification-rate"`
	UnverifiedRiskImpact   float64 `mapstructure:"unverified-risk-impact"`
	UnverifiedScorePenalty float64 `mapstructure:"unverified-score-penalty"`

	ExperienceSaturation float64 `mapstructure:"experience-saturation"`
	DefaultConfidence    float64 `mapstructure:"default-confidence"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		HalfLifeMonths:         18,
		DaysPerMonth:           30,
		UndatedScore:           50,
		DecayRiskThreshold:     30,
		SevereDecayThreshold:   15,
		DecayRiskImpact:        5,
		SevereDecayImpact:      10,
		LowVerificationRate:    50,
		UnverifiedRiskImpact:   3,
		UnverifiedScorePenalty: 5,
		ExperienceSaturation:   3,
		DefaultConfidence:      0.5,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.HalfLifeMonths <= 0 {
		c.HalfLifeMonths = def.HalfLifeMonths
	}
	if c.DaysPerMonth <= 0 {
		c.DaysPerMonth = def.DaysPerMonth
	}
	if c.ExperienceSaturation <= 0 {
		c.ExperienceSaturation = def.ExperienceSaturation
	}
	return c
}

package synthesis

// Config holds the weighting and banding policy of the synthesizer.
type Config struct {
	// Weights per agent key. Reports under keys without a weight only
	// contribute their risk penalties.
	Weights      map[string]float64 `mapstructure:"weights"`
	NeutralScore float64            `mapstructure:"neutral-score"`

	CriticalBelow float64 `mapstructure:"critical-below"`
	HighBelow     float64 `mapstructure:"high-below"`
	MediumBelow   float64 `mapstructure:"medium-below"`

	StrongBand   float64 `mapstructure:"strong-band"`
	GoodBand     float64 `mapstructure:"good-band"`
	ModerateBand float64 `mapstructure:"moderate-band"`

	Findings FindingThresholds `mapstructure:"findings"`
}

// FindingThresholds decide which signals are worth a key finding.
type FindingThresholds struct {
	StrongDecay         float64 `mapstructure:"strong-decay"`
	ConcerningDecay     float64 `mapstructure:"concerning-decay"`
	HighVerification    float64 `mapstructure:"high-verification"`
	LowVerification     float64 `mapstructure:"low-verification"`
	GenuineGreenwashing int     `mapstructure:"genuine-greenwashing"`
	HighGreenwashing    int     `mapstructure:"high-greenwashing"`
	PresenceOwnedRepos  int     `mapstructure:"presence-owned-repos"`
	PresenceStars       int     `mapstructure:"presence-stars"`
	HighForkRatio       float64 `mapstructure:"high-fork-ratio"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		Weights:       map[string]float64{"resume": 0.5, "github": 0.5},
		NeutralScore:  50,
		CriticalBelow: 40,
		HighBelow:     55,
		MediumBelow:   70,
		StrongBand:    80,
		GoodBand:      65,
		ModerateBand:  50,
		Findings: FindingThresholds{
			StrongDecay:         70,
			ConcerningDecay:     40,
			HighVerification:    80,
			LowVerification:     50,
			GenuineGreenwashing: 30,
			HighGreenwashing:    60,
			PresenceOwnedRepos:  10,
			PresenceStars:       50,
			HighForkRatio:       70,
		},
	}
}

// withDefaults fills values that cannot be zero and replaces the finding
// thresholds when none is set.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Weights == nil {
		c.Weights = def.Weights
	}
	if c.NeutralScore <= 0 {
		c.NeutralScore = def.NeutralScore
	}
	if c.CriticalBelow <= 0 && c.HighBelow <= 0 && c.MediumBelow <= 0 {
		c.CriticalBelow, c.HighBelow, c.MediumBelow = def.CriticalBelow, def.HighBelow, def.MediumBelow
	}
	if c.StrongBand <= 0 && c.GoodBand <= 0 && c.ModerateBand <= 0 {
		c.StrongBand, c.GoodBand, c.ModerateBand = def.StrongBand, def.GoodBand, def.ModerateBand
	}
	if c.Findings == (FindingThresholds{}) {
		c.Findings = def.Findings
	}
	return c
}

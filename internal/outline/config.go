package outline

// Config holds the heuristic thresholds of the engine.
type Config struct {
	// TitleBandY is the lowest top edge (y0) a page-one fragment may have
	// and still be considered for the title.
	TitleBandY float64

	// TitleStopPrefixes are lower-case prefixes that disqualify a title
	// candidate.
	TitleStopPrefixes []string

	// MinHeadingRunes is the shortest heading text, in runes.
	MinHeadingRunes int

	// TitleYTolerance is how close a fragment's y0 must be to the title's
	// y0 on the same page to be treated as the title itself.
	TitleYTolerance float64

	// MaxLevel caps every assigned level.
	MaxLevel int
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		TitleBandY:        200,
		TitleStopPrefixes: []string{"table of contents", "index", "1.", "abstract"},
		MinHeadingRunes:   3,
		TitleYTolerance:   1,
		MaxLevel:          6,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TitleBandY <= 0 {
		c.TitleBandY = d.TitleBandY
	}
	if c.TitleStopPrefixes == nil {
		c.TitleStopPrefixes = d.TitleStopPrefixes
	}
	if c.MinHeadingRunes <= 0 {
		c.MinHeadingRunes = d.MinHeadingRunes
	}
	if c.TitleYTolerance <= 0 {
		c.TitleYTolerance = d.TitleYTolerance
	}
	if c.MaxLevel <= 0 || c.MaxLevel > d.MaxLevel {
		c.MaxLevel = d.MaxLevel
	}
	return c
}

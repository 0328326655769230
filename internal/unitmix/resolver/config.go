// internal/unitmix/resolver/config.go
package resolver

type Config struct {
	// LongCitationChars is the citation length from which a MEDIUM inferred
	// unit counts as known during default fill.
	LongCitationChars int
	MaxAvgBedsPerUnit float64
	// EqualDistMaxBeds caps the per-slot share in equal distribution.
	EqualDistMaxBeds          int
	SingleUnitUsesStatedTotal bool
}

func DefaultConfig() *Config {
	return &Config{
		LongCitationChars:         40,
		MaxAvgBedsPerUnit:         2,
		EqualDistMaxBeds:          2,
		SingleUnitUsesStatedTotal: true,
	}
}

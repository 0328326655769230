// internal/unitmix/underwriting/config.go
package underwriting

type Config struct {
	PassThreshold        float64
	MaxLowConfidenceBeds int
	// LowCapBeds and MediumCapBeds bound units in an adjusted mix.
	LowCapBeds    int
	MediumCapBeds int
}

func DefaultConfig() *Config {
	return &Config{
		PassThreshold:        50,
		MaxLowConfidenceBeds: 2,
		LowCapBeds:           1,
		MediumCapBeds:        2,
	}
}

// internal/unitmix/strict/config.go
package strict

type Config struct {
	MaxTextLength int
	WindowSize    int
}

func DefaultConfig() *Config {
	return &Config{
		MaxTextLength: 10000,
		WindowSize:    80,
	}
}

// internal/unitmix/extractor/config.go
package extractor

import (
	"time"

	"listing-unitmix/internal/unitmix/inference"
	"listing-unitmix/internal/unitmix/resolver"
	"listing-unitmix/internal/unitmix/strict"
	"listing-unitmix/internal/unitmix/underwriting"
)

type Config struct {
	MaxTextLength int
	LLMTimeout    time.Duration

	Strict       *strict.Config
	Inference    *inference.Config
	Resolver     *resolver.Config
	Underwriting *underwriting.Config
}

func DefaultConfig() *Config {
	return &Config{
		MaxTextLength: 10000,
		LLMTimeout:    30 * time.Second,
		Strict:        strict.DefaultConfig(),
		Inference:     inference.DefaultConfig(),
		Resolver:      resolver.DefaultConfig(),
		Underwriting:  underwriting.DefaultConfig(),
	}
}

// withDefaults fills nil sections so a partially built Config is usable.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.MaxTextLength <= 0 {
		out.MaxTextLength = d.MaxTextLength
	}
	if out.LLMTimeout <= 0 {
		out.LLMTimeout = d.LLMTimeout
	}
	if out.Strict == nil {
		out.Strict = d.Strict
	}
	if out.Inference == nil {
		out.Inference = d.Inference
	}
	if out.Resolver == nil {
		out.Resolver = d.Resolver
	}
	if out.Underwriting == nil {
		out.Underwriting = d.Underwriting
	}
	return &out
}

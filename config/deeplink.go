package config

import (
	"strings"
	"time"
)

const (
	defaultDeepLinkPrefix   = "app-scheme://auth"
	defaultLaunchURLTimeout = 2 * time.Second
)

// DeepLinkConfig controls which deep links may authenticate the user.
type DeepLinkConfig struct {
	// Prefix is the trusted redirect target registered with the backend.
	Prefix string `env:"DEEP_LINK_PREFIX" envDefault:"app-scheme://auth"`
	// RequireTrusted rejects deep links that do not start with Prefix.
	RequireTrusted bool `env:"DEEP_LINK_REQUIRE_TRUSTED" envDefault:"true"`
	// LaunchURLTimeout bounds the wait for the launch URL on start.
	LaunchURLTimeout time.Duration `env:"LAUNCH_URL_TIMEOUT" envDefault:"2s"`
}

// Sanitize normalises the prefix and enforces a positive launch timeout.
func (c *DeepLinkConfig) Sanitize() {
	c.Prefix = strings.TrimSpace(c.Prefix)
	if c.Prefix == "" {
		c.Prefix = defaultDeepLinkPrefix
	}
	if c.LaunchURLTimeout <= 0 {
		c.LaunchURLTimeout = defaultLaunchURLTimeout
	}
}

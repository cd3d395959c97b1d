package ratelimit

import (
	"time"

	"github.com/dmikhr/coinpurse-bot/pkg/config"
)

// Rules resolves configured rate limits for economy commands.
type Rules struct {
	config config.RateLimitConfig
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	return &Rules{config: cfg}
}

// Enabled reports whether rate limiting is switched on at all.
func (r *Rules) Enabled() bool {
	return r.config.Enabled
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	for _, id := range r.config.Whitelist {
		if id == userID {
			return true
		}
	}

	return false
}

// CommandLimit returns the limit for a specific command, falling back to the
// per-user default when the command has no dedicated rule.
func (r *Rules) CommandLimit(command string) (int, time.Duration, error) {
	if rule, ok := r.config.Commands[command]; ok {
		return rule.Parse()
	}

	return r.PerUserLimit()
}

// PerUserLimit returns the default per-user rate limiting rule.
func (r *Rules) PerUserLimit() (int, time.Duration, error) {
	return r.config.PerUser.Parse()
}

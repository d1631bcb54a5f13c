package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig describes one token-bucket profile.  Profiles are applied
// per route group: the authentication endpoints get strict fixed windows
// while the rest of the API uses the general profile.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig builds the general API profile from environment
// variables.  Defaults allow 60 requests with one token refilled per second.
func LoadRateLimitConfig() RateLimitConfig {
    def := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if def.Capacity < 1 { def.Capacity = 1 }
    if def.RefillTokens < 1 { def.RefillTokens = 1 }
    if def.RefillInterval <= 0 { def.RefillInterval = time.Second }
    minTTL := 5 * def.RefillInterval
    if def.TTL < minTTL { def.TTL = minTTL }
    return def
}

// LoginRateLimit returns the profile for the login endpoint: 5 attempts per
// 15 minutes per client IP.  The whole bucket refills at once so the window
// behaves like the fixed window of the upstream deployment.
func LoginRateLimit() RateLimitConfig {
    return RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       5,
        RefillTokens:   5,
        RefillInterval: 15 * time.Minute,
        TTL:            30 * time.Minute,
        KeyStrategy:    "ip",
        Prefix:         "rl:login",
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
}

// ResetRateLimit returns the profile for the password reset endpoints:
// 5 requests per 30 minutes per client IP.
func ResetRateLimit() RateLimitConfig {
    return RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       5,
        RefillTokens:   5,
        RefillInterval: 30 * time.Minute,
        TTL:            time.Hour,
        KeyStrategy:    "ip",
        Prefix:         "rl:reset",
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}

package flags

import (
	"slices"
	"strconv"

	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
)

// Environment variables recognised by SeedFromEnv.
const (
	envTextParserEnabled    = "FLAG_TEXT_PARSER"
	envTextParserImpl       = "TEXT_PARSER_IMPL"
	envSummarizerEnabled    = "FLAG_SUMMARIZER"
	envImageGenerator       = "FLAG_IMAGE_GENERATOR"
	envAuditTrailEnabled    = "FLAG_AUDIT_TRAIL"
	envNotificationsEnabled = "FLAG_NOTIFICATIONS"
)

// simpleFlagEnv maps simple flags to their enablement override variable.
var simpleFlagEnv = map[string]string{
	FeatureSummarizer:     envSummarizerEnabled,
	FeatureImageGenerator: envImageGenerator,
	FeatureAuditTrail:     envAuditTrailEnabled,
	FeatureNotifications:  envNotificationsEnabled,
}

// SeedFromEnv applies environment overrides to the registry at process
// start. For each simple flag an override, if present and parseable as a
// boolean, replaces the default. The text parser flag takes a separate
// enablement override and a separate implementation override, applied
// independently; an implementation outside the enumerated set is rejected
// with a warning.
func (r *Registry) SeedFromEnv(getenv func(string) string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, envVar := range simpleFlagEnv {
		applyBoolOverride(r.flags[name], getenv(envVar))
	}

	parser := r.flags[FeatureTextParser]
	applyBoolOverride(parser, getenv(envTextParserEnabled))

	if impl := getenv(envTextParserImpl); impl != "" {
		if slices.Contains(parser.allowed, impl) {
			parser.implementation = impl
		} else {
			r.logger.Warn("ignoring invalid text parser implementation override",
				logger.String("implementation", impl),
			)
		}
	}
}

// applyBoolOverride sets state.enabled from raw when raw parses as a
// boolean; anything else leaves the default in place.
func applyBoolOverride(state *flagState, raw string) {
	if raw == "" {
		return
	}
	enabled, parseErr := strconv.ParseBool(raw)
	if parseErr != nil {
		return
	}
	state.enabled = enabled
}

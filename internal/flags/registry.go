// Package flags implements the process-wide feature flag registry.
package flags

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
)

// Feature names registered by default.
const (
	// FeatureTextParser selects and gates the parsing backend. Variant flag.
	FeatureTextParser = "textParser"
	// FeatureSummarizer gates the summarization backend.
	FeatureSummarizer = "summarizer"
	// FeatureImageGenerator gates the image generation backend.
	FeatureImageGenerator = "imageGenerator"
	// FeatureAuditTrail gates best-effort audit logging.
	FeatureAuditTrail = "auditTrail"
	// FeatureNotifications gates the notification fan-out.
	FeatureNotifications = "notifications"
)

// Text parser implementation variants. The set is closed; adding a backend
// means touching this list and the dispatcher's endpoint mapping together.
const (
	ImplDeepseek = "deepseek"
	ImplOpenAI   = "openai"
	ImplAzure    = "azure"
)

// Flag is the externally visible state of one feature flag.
type Flag struct {
	Enabled bool `json:"enabled"`
	// Implementation is only meaningful for variant flags and only when
	// the flag is enabled.
	Implementation string `json:"implementation,omitempty"`
}

// flagState is the registry's internal record for one flag.
type flagState struct {
	enabled        bool
	implementation string
	// allowed is the fixed enumerated set of valid implementations.
	// Empty for simple flags.
	allowed []string
}

// Store is the persistence port for the registry. Save must durably commit
// the full snapshot; Load returns the last committed snapshot (nil if none).
type Store interface {
	Load(ctx context.Context) (map[string]Flag, error)
	Save(ctx context.Context, snapshot map[string]Flag) error
}

// Registry holds all feature flags. It is shared, process-wide state;
// reads are safe to interleave with a concurrent Update.
type Registry struct {
	mu     sync.RWMutex
	flags  map[string]*flagState
	store  Store
	logger logger.Logger
}

// NewRegistry creates a registry seeded with the default flag set.
// store may be nil, in which case updates are memory-only.
func NewRegistry(store Store, log logger.Logger) *Registry {
	return &Registry{
		flags: map[string]*flagState{
			FeatureTextParser: {
				enabled:        true,
				implementation: ImplDeepseek,
				allowed:        []string{ImplDeepseek, ImplOpenAI, ImplAzure},
			},
			FeatureSummarizer:     {enabled: true},
			FeatureImageGenerator: {enabled: true},
			FeatureAuditTrail:     {enabled: true},
			FeatureNotifications:  {enabled: false},
		},
		store:  store,
		logger: log,
	}
}

// Get returns the flag named name.
func (r *Registry) Get(name string) (Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.flags[name]
	if !ok {
		return Flag{}, fmt.Errorf("%w: %s", domain.ErrUnknownFlag, name)
	}
	return state.flag(), nil
}

// IsEnabled reports whether the named flag is enabled. Unregistered names
// resolve to false; enablement checks never error.
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.flags[name]
	return ok && state.enabled
}

// Implementation returns the selected implementation variant for name.
// The second return is false for unknown or simple flags.
func (r *Registry) Implementation(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.flags[name]
	if !ok || len(state.allowed) == 0 {
		return "", false
	}
	return state.implementation, true
}

// Update changes the named flag and persists the new snapshot through the
// store. implementation may be nil to leave the variant unchanged.
//
// On a persistence failure the in-memory state stays mutated and a
// *domain.PersistenceError is returned; the caller decides how loudly to
// surface the inconsistency.
func (r *Registry) Update(ctx context.Context, name string, enabled bool, implementation *string) error {
	r.mu.Lock()

	state, ok := r.flags[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrUnknownFlag, name)
	}

	if implementation != nil {
		if len(state.allowed) == 0 {
			r.mu.Unlock()
			return fmt.Errorf("%w: flag %s does not take an implementation", domain.ErrInvalidImplementation, name)
		}
		if !slices.Contains(state.allowed, *implementation) {
			r.mu.Unlock()
			return fmt.Errorf("%w: %q is not one of %v", domain.ErrInvalidImplementation, *implementation, state.allowed)
		}
		state.implementation = *implementation
	}
	state.enabled = enabled

	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Info("feature flag updated",
		logger.String("flag", name),
		logger.Bool("enabled", enabled),
	)

	if r.store == nil {
		return nil
	}

	if saveErr := r.store.Save(ctx, snapshot); saveErr != nil {
		r.logger.Warn("flag updated in memory only, snapshot save failed",
			logger.String("flag", name),
			logger.Error(saveErr),
		)
		return &domain.PersistenceError{Err: saveErr}
	}

	return nil
}

// Snapshot returns a copy of the full registry state.
func (r *Registry) Snapshot() map[string]Flag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Restore applies a previously saved snapshot over the defaults. Unknown
// flag names and invalid implementations are skipped with a warning rather
// than failing startup.
func (r *Registry) Restore(snapshot map[string]Flag) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, flag := range snapshot {
		state, ok := r.flags[name]
		if !ok {
			r.logger.Warn("ignoring unknown flag in saved snapshot", logger.String("flag", name))
			continue
		}
		state.enabled = flag.Enabled
		if flag.Implementation == "" {
			continue
		}
		if !slices.Contains(state.allowed, flag.Implementation) {
			r.logger.Warn("ignoring invalid implementation in saved snapshot",
				logger.String("flag", name),
				logger.String("implementation", flag.Implementation),
			)
			continue
		}
		state.implementation = flag.Implementation
	}
}

// snapshotLocked copies the registry state. Callers must hold mu.
func (r *Registry) snapshotLocked() map[string]Flag {
	snapshot := make(map[string]Flag, len(r.flags))
	for name, state := range r.flags {
		snapshot[name] = state.flag()
	}
	return snapshot
}

// flag converts the internal state to its external form. Implementation is
// only exposed while the flag is enabled.
func (s *flagState) flag() Flag {
	f := Flag{Enabled: s.enabled}
	if s.enabled && len(s.allowed) > 0 {
		f.Implementation = s.implementation
	}
	return f
}

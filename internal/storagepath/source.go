package storagepath

import (
	"fmt"
	"math"
	"sync"
	"time"

	"modelwatch/internal/storage"
	"modelwatch/pkg/types"
)

// Source polls a storage backend for the versions of each configured
// servable and emits them to a single callback.
//
// One mutex guards the config, the callback and the poller, so a poll never
// observes a half-applied config and reconfiguration never observes a
// half-finished poll.
type Source struct {
	fs       storage.FileSystem
	pollUnit time.Duration

	mu       sync.Mutex
	config   types.SourceConfig
	callback types.AspiredVersionsCallback
	poller   *poller
	closed   bool
}

// Option configures a Source.
type Option func(*Source)

// WithPollUnit sets the duration of one poll-interval unit. Defaults to a
// second; tests shorten it.
func WithPollUnit(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.pollUnit = d
		}
	}
}

// NewSource creates a Source and applies cfg as with UpdateConfig.
func NewSource(cfg types.SourceConfig, fs storage.FileSystem, opts ...Option) (*Source, error) {
	s := &Source{fs: fs, pollUnit: time.Second}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.UpdateConfig(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateConfig replaces the active config. It fails without changing
// anything if the poll interval changes after polling started, or if the
// config demands versions that are missing. Servables dropped by the new
// config are unaspired through the callback before the config is committed.
func (s *Source) UpdateConfig(cfg types.SourceConfig) error {
	cfg = cfg.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poller != nil && cfg.PollIntervalSeconds != s.config.PollIntervalSeconds {
		return fmt.Errorf("%w: changing poll_interval_seconds from %d to %d is not supported",
			ErrInvalidConfig, s.config.PollIntervalSeconds, cfg.PollIntervalSeconds)
	}
	if cfg.PollIntervalSeconds > math.MaxInt64/int64(s.pollUnit) {
		return fmt.Errorf("%w: poll_interval_seconds %d is too large",
			ErrInvalidConfig, cfg.PollIntervalSeconds)
	}

	if cfg.FailIfZeroVersionsAtStartup || cfg.ServableVersionsAlwaysPresent {
		if err := failIfZeroVersions(s.fs, cfg); err != nil {
			return err
		}
	}

	if s.callback != nil {
		s.unaspireLocked(deletedServables(s.config, cfg))
	}
	s.config = cfg
	zlog.Debug().Int("servables", len(cfg.Servables)).Int64("poll_interval_seconds", cfg.PollIntervalSeconds).Msg("source config updated")
	return nil
}

// Config returns a copy of the active config.
func (s *Source) Config() types.SourceConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Clone()
}

// SetAspiredVersionsCallback registers cb and starts polling according to
// the configured interval. Only the first call has any effect.
func (s *Source) SetAspiredVersionsCallback(cb types.AspiredVersionsCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.callback != nil {
		zlog.Error().Msg("SetAspiredVersionsCallback called multiple times; ignoring this call")
		return
	}
	s.callback = cb
	if s.closed {
		return
	}

	mode := modeForInterval(s.config.PollIntervalSeconds)
	if mode == pollNever {
		zlog.Info().Msg("polling disabled by negative poll interval")
		return
	}
	interval := time.Duration(s.config.PollIntervalSeconds) * s.pollUnit
	s.poller = startPoller(mode, interval, s.tick)
	zlog.Info().Str("mode", mode.String()).Dur("interval", interval).Msg("storage polling started")
}

// tick runs one poll from the background poller. Errors never stop polling.
func (s *Source) tick() {
	if err := s.Poll(); err != nil {
		zlog.Error().Err(err).Msg("storage poll failed")
	}
}

// Poll resolves every servable and invokes the callback once per servable.
// It returns without invoking the callback for any servable if one of them
// cannot be resolved.
func (s *Source) Poll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.pollAndInvokeLocked()
	recordPoll(err)
	return err
}

func (s *Source) pollAndInvokeLocked() error {
	if s.callback == nil {
		return ErrNoCallback
	}
	resolved, err := pollConfig(s.fs, s.config)
	if err != nil {
		return err
	}
	for i, sv := range resolved {
		if len(sv.versions) == 0 && s.config.ServableVersionsAlwaysPresent {
			zlog.Error().
				Str("servable", sv.name).
				Str("base_path", s.config.Servables[i].BasePath).
				Msg("refusing to unload all versions of servable: no versions found and servable_versions_always_present is set")
			skippedEmptyTotal.WithLabelValues(sv.name).Inc()
			continue
		}
		zlog.Debug().
			Str("servable", sv.name).
			Str("base_path", s.config.Servables[i].BasePath).
			Int("versions", len(sv.versions)).
			Int64("poll_interval_seconds", s.config.PollIntervalSeconds).
			Msg("storage polling update")
		s.callback(sv.name, sv.versions)
		recordCallback(sv.name, len(sv.versions))
	}
	return nil
}

// Resolve runs one poll over the active config without invoking the
// callback and returns the versions per servable name.
func (s *Source) Resolve() (map[string][]types.ServableData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resolved, err := pollConfig(s.fs, s.config)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]types.ServableData, len(resolved))
	for _, sv := range resolved {
		out[sv.name] = sv.versions
	}
	return out, nil
}

// Close stops polling and blocks until an in-flight poll finishes.
func (s *Source) Close() {
	s.mu.Lock()
	s.closed = true
	p := s.poller
	s.mu.Unlock()
	if p != nil {
		p.shutdown()
	}
}

func (s *Source) unaspireLocked(names []string) {
	for _, name := range names {
		zlog.Info().Str("servable", name).Msg("servable removed from config; unaspiring all versions")
		s.callback(name, []types.ServableData{})
		recordCallback(name, 0)
	}
}

// deletedServables returns the names present in old but not in updated, in
// the order they appear in old.
func deletedServables(old, updated types.SourceConfig) []string {
	keep := make(map[string]struct{}, len(updated.Servables))
	for _, s := range updated.Servables {
		keep[s.Name] = struct{}{}
	}
	var deleted []string
	seen := make(map[string]struct{})
	for _, s := range old.Servables {
		if _, ok := keep[s.Name]; ok {
			continue
		}
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		deleted = append(deleted, s.Name)
	}
	return deleted
}

package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// MaxPollIntervalSeconds is the largest poll interval that fits a time.Duration.
const MaxPollIntervalSeconds = math.MaxInt64 / int64(time.Second)

// validationError reports an invalid configuration field.
type validationError struct {
	field string
	msg   string
}

func (e validationError) Error() string { return "invalid config: " + e.field + ": " + e.msg }

// IsValidation reports whether err came from Validate.
func IsValidation(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}

// Validate checks the config for structural errors. All problems are
// reported together.
func (c Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, validationError{field: field, msg: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]bool, len(c.Source.Servables))
	for i, s := range c.Source.Servables {
		field := fmt.Sprintf("source.servables[%d]", i)
		if s.Name == "" {
			add(field+".name", "must not be empty")
		} else if seen[s.Name] {
			add(field+".name", "duplicate servable %q", s.Name)
		}
		seen[s.Name] = true
		if s.BasePath == "" {
			add(field+".base_path", "must not be empty")
		}
		if s.VersionPolicy.NumSet() > 1 {
			add(field+".version_policy", "at most one of latest, all, specific may be set")
		}
	}

	if c.Source.PollIntervalSeconds > MaxPollIntervalSeconds {
		add("source.poll_interval_seconds", "must be at most %d", MaxPollIntervalSeconds)
	}

	switch c.Storage.Backend {
	case "", BackendLocal:
	case BackendS3:
		if c.Storage.S3.Endpoint == "" {
			add("storage.s3.endpoint", "required for the s3 backend")
		}
		if c.Storage.S3.Bucket == "" {
			add("storage.s3.bucket", "required for the s3 backend")
		}
	default:
		add("storage.backend", "unknown backend %q", c.Storage.Backend)
	}

	for i, r := range c.FastLoad.Servables {
		if r.Name == "" {
			add(fmt.Sprintf("fast_load.servables[%d].name", i), "must not be empty")
		}
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			add("log_level", "%v", err)
		}
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		add("log_format", "must be console or json, got %q", c.LogFormat)
	}
	return errors.Join(errs...)
}

package journal

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// DefaultAttachEnv is set by systemd (v232+) for every unit it starts.
const DefaultAttachEnv = "INVOCATION_ID"

// Config holds the bridge configuration.
type Config struct {
	// SyslogIdentifier populates SYSLOG_IDENTIFIER when non-empty.
	SyslogIdentifier string `envconfig:"SYSLOG_IDENTIFIER"`
	// Backend selects the native send binding.
	Backend string `envconfig:"BACKEND" default:"go-systemd"`
	// AttachEnv names the environment variable whose presence means the
	// process runs under systemd supervision.
	AttachEnv string `envconfig:"ATTACH_ENV" default:"INVOCATION_ID"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendGoSystemd,
		AttachEnv: DefaultAttachEnv,
	}
}

// known option keys
var knownOpts = map[string]bool{
	"syslog-identifier": true,
	"backend":           true,
	"attach-env":        true,
}

// ParseConfig validates and parses a map of option key/value pairs.
func ParseConfig(opts map[string]string) (Config, error) {
	for key := range opts {
		if !knownOpts[key] {
			return Config{}, errors.Errorf("unknown option %q", key)
		}
	}

	cfg := DefaultConfig()
	cfg.SyslogIdentifier = opts["syslog-identifier"]

	if v, ok := opts["backend"]; ok && v != "" {
		if _, known := backends[v]; !known {
			return Config{}, errors.Errorf("invalid backend %q (valid: %s, %s)", v, BackendGoSystemd, BackendSsgreg)
		}
		cfg.Backend = v
	}

	if v, ok := opts["attach-env"]; ok {
		if v == "" {
			return Config{}, errors.New("attach-env must not be empty")
		}
		cfg.AttachEnv = v
	}

	return cfg, nil
}

// ConfigFromEnv reads <PREFIX>_SYSLOG_IDENTIFIER, <PREFIX>_BACKEND and
// <PREFIX>_ATTACH_ENV.
func ConfigFromEnv(prefix string) (Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "reading environment")
	}
	if _, known := backends[cfg.Backend]; !known {
		return Config{}, errors.Errorf("invalid backend %q", cfg.Backend)
	}
	return cfg, nil
}

// Attached reports whether the process runs under systemd and its log
// output should go to the journal.
func Attached(cfg Config) bool {
	name := cfg.AttachEnv
	if name == "" {
		name = DefaultAttachEnv
	}
	return os.Getenv(name) != ""
}

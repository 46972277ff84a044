package journal

import "testing"

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(map[string]string{})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Backend != BackendGoSystemd {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendGoSystemd)
	}
	if cfg.AttachEnv != "INVOCATION_ID" {
		t.Errorf("AttachEnv = %q", cfg.AttachEnv)
	}
	if cfg.SyslogIdentifier != "" {
		t.Errorf("SyslogIdentifier = %q, want empty", cfg.SyslogIdentifier)
	}
}

func TestParseConfigValues(t *testing.T) {
	cfg, err := ParseConfig(map[string]string{
		"syslog-identifier": "myapp",
		"backend":           "ssgreg",
		"attach-env":        "JOURNAL_STREAM",
	})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.SyslogIdentifier != "myapp" || cfg.Backend != BackendSsgreg || cfg.AttachEnv != "JOURNAL_STREAM" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]string
	}{
		{"unknown key", map[string]string{"colour": "blue"}},
		{"bad backend", map[string]string{"backend": "syslog"}},
		{"empty attach env", map[string]string{"attach-env": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig(tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("JOURNAL_SYSLOG_IDENTIFIER", "fromenv")
	t.Setenv("JOURNAL_BACKEND", "ssgreg")

	cfg, err := ConfigFromEnv("JOURNAL")
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.SyslogIdentifier != "fromenv" {
		t.Errorf("SyslogIdentifier = %q", cfg.SyslogIdentifier)
	}
	if cfg.Backend != BackendSsgreg {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if cfg.AttachEnv != DefaultAttachEnv {
		t.Errorf("AttachEnv = %q, want default", cfg.AttachEnv)
	}
}

func TestConfigFromEnvBadBackend(t *testing.T) {
	t.Setenv("JOURNAL_BACKEND", "nope")
	if _, err := ConfigFromEnv("JOURNAL"); err == nil {
		t.Error("expected error")
	}
}

func TestAttached(t *testing.T) {
	t.Setenv("INVOCATION_ID", "")
	if Attached(DefaultConfig()) {
		t.Error("empty INVOCATION_ID should not count as attached")
	}

	t.Setenv("INVOCATION_ID", "0123456789abcdef")
	if !Attached(DefaultConfig()) {
		t.Error("INVOCATION_ID set should count as attached")
	}

	t.Setenv("MY_MARKER", "1")
	if !Attached(Config{AttachEnv: "MY_MARKER"}) {
		t.Error("custom attach env should be honoured")
	}
}

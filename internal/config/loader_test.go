package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

const yamlConfig = `addr: :9999
log_level: debug
load_threads: 2
storage:
  backend: local
source:
  poll_interval_seconds: 30
  servable_versions_always_present: true
  servables:
    - name: mnist
      base_path: /models/mnist
      version_policy:
        latest:
          num_versions: 2
    - name: resnet
      base_path: /models/resnet
      version_policy:
        specific:
          versions: [3, 5]
    - name: bert
      base_path: /models/bert
      version_policy:
        all: {}
fast_load:
  threads: 8
  servables:
    - name: mnist
    - name: resnet
      version: 5
`

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", yamlConfig)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.LogLevel != "debug" || cfg.LoadThreads != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	src := cfg.Source
	if src.PollIntervalSeconds != 30 || !src.ServableVersionsAlwaysPresent || len(src.Servables) != 3 {
		t.Fatalf("unexpected source: %+v", src)
	}
	if n := src.Servables[0].VersionPolicy.NumLatestVersions(); n != 2 {
		t.Fatalf("expected latest 2, got %d", n)
	}
	if vs := src.Servables[1].VersionPolicy.SpecificVersions(); len(vs) != 2 || vs[1] != 5 {
		t.Fatalf("unexpected specific versions: %v", vs)
	}
	if src.Servables[2].VersionPolicy.All == nil {
		t.Fatalf("expected all policy")
	}
	fl := cfg.FastLoad
	if fl.Threads != 8 || len(fl.Servables) != 2 || fl.Servables[0].Version != nil || *fl.Servables[1].Version != 5 {
		t.Fatalf("unexpected fast_load: %+v", fl)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","storage":{"backend":"s3","s3":{"endpoint":"minio:9000","bucket":"models"}},
"source":{"servables":[{"name":"m","base_path":"s3://models/m","version_policy":{"specific":{"versions":[1]}}}]}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Storage.Backend != BackendS3 || cfg.Storage.S3.Bucket != "models" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.Source.Servables) != 1 || cfg.Source.Servables[0].VersionPolicy.Specific == nil {
		t.Fatalf("unexpected servables: %+v", cfg.Source.Servables)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", `addr = ":8081"
log_format = "json"

[source]
poll_interval_seconds = -1

[[source.servables]]
name = "m"
base_path = "/x/m"

[source.servables.version_policy.latest]
num_versions = 3
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.LogFormat != "json" || cfg.Source.PollIntervalSeconds != -1 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.Source.Servables) != 1 || cfg.Source.Servables[0].VersionPolicy.NumLatestVersions() != 3 {
		t.Fatalf("unexpected servables: %+v", cfg.Source.Servables)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.CORS.Enabled = true
	cfg.ApplyDefaults()
	if cfg.Addr != DefaultAddr || cfg.LogLevel != DefaultLogLevel || cfg.LogFormat != DefaultLogFormat {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LoadThreads != DefaultLoadThreads || cfg.Storage.Backend != BackendLocal || cfg.FastLoad.TimeoutSeconds != DefaultFastLoadTimeoutSec {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		t.Fatalf("expected default CORS methods")
	}
	cfg = Config{Addr: ":1", LoadThreads: 9}
	cfg.ApplyDefaults()
	if cfg.Addr != ":1" || cfg.LoadThreads != 9 {
		t.Fatalf("defaults must not override set values: %+v", cfg)
	}
}

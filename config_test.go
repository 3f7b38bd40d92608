package pathkit

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestGetConfig(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    Config
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			want: Config{
				Platform:  "native",
				Driver:    "local",
				LocalRoot: ".",
				LogLevel:  "info",
			},
		},
		{
			name: "gcs configuration",
			envVars: map[string]string{
				"BEAVER_PATHKIT_DRIVER":               "gcs",
				"BEAVER_PATHKIT_GCS_BUCKET":           "media",
				"BEAVER_PATHKIT_GCS_PREFIX":           "tenant-a/",
				"BEAVER_PATHKIT_GCS_CREDENTIALS_FILE": "/etc/gcs.json",
				"BEAVER_PATHKIT_LOG_LEVEL":            "debug",
			},
			want: Config{
				Platform:           "native",
				Driver:             "gcs",
				LocalRoot:          ".",
				GCSBucket:          "media",
				GCSPrefix:          "tenant-a/",
				GCSCredentialsFile: "/etc/gcs.json",
				LogLevel:           "debug",
			},
		},
		{
			name: "parsing rules",
			envVars: map[string]string{
				"BEAVER_PATHKIT_PLATFORM":           "windows",
				"BEAVER_PATHKIT_SEPARATOR":          ":",
				"BEAVER_PATHKIT_KEEP_TRAILING_DOTS": "true",
				"BEAVER_PATHKIT_DRIVER":             "memory",
			},
			want: Config{
				Platform:         "windows",
				Separator:        ":",
				KeepTrailingDots: true,
				Driver:           "memory",
				LocalRoot:        ".",
				LogLevel:         "info",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := GetConfig()
			if err != nil {
				t.Fatalf("GetConfig() error = %v", err)
			}
			if *cfg != tt.want {
				t.Errorf("GetConfig() = %+v, want %+v", *cfg, tt.want)
			}
		})
	}
}

func TestConfigParser(t *testing.T) {
	cfg := &Config{Platform: "windows", KeepTrailingDots: true}
	parser, err := cfg.Parser()
	if err != nil {
		t.Fatalf("Parser() error = %v", err)
	}
	if parser.Platform() != Windows {
		t.Errorf("Platform() = %v, want windows", parser.Platform())
	}
	p, err := parser.Path(`c:\dir\name.`)
	if err != nil {
		t.Fatal(err)
	}
	if p.Filename() != "name." {
		t.Errorf("Filename() = %q, trailing dot should be kept", p.Filename())
	}

	cfg = &Config{Platform: "posix", Separator: ":"}
	parser, err = cfg.Parser()
	if err != nil {
		t.Fatal(err)
	}
	if parser.Separator() != ':' {
		t.Errorf("Separator() = %q", parser.Separator())
	}

	for _, bad := range []*Config{
		{Platform: "beos"},
		{Separator: "::"},
	} {
		if _, err := bad.Parser(); err == nil {
			t.Errorf("Parser() for %+v should fail", *bad)
		}
	}
}

func TestConfigLevel(t *testing.T) {
	level, err := (&Config{}).Level()
	if err != nil || level != logrus.InfoLevel {
		t.Errorf("empty level = %v, %v", level, err)
	}
	level, err = (&Config{LogLevel: "warn"}).Level()
	if err != nil || level != logrus.WarnLevel {
		t.Errorf("warn level = %v, %v", level, err)
	}
	if _, err := (&Config{LogLevel: "loud"}).Level(); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"nil config", nil, true},
		{"missing driver", &Config{}, true},
		{"local", &Config{Driver: "local", LocalRoot: "/srv"}, false},
		{"local without root", &Config{Driver: "local"}, true},
		{"gcs", &Config{Driver: "gcs", GCSBucket: "b"}, false},
		{"gcs without bucket", &Config{Driver: "gcs"}, true},
		{"memory", &Config{Driver: "memory"}, false},
		{"unknown driver", &Config{Driver: "ftp"}, true},
		{"bad platform", &Config{Driver: "memory", Platform: "amiga"}, true},
		{"bad level", &Config{Driver: "memory", LogLevel: "loud"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

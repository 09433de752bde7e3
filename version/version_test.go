package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		bi   *debug.BuildInfo
		want Info
	}{
		{
			name: "no build info",
			bi:   nil,
			want: Info{Version: develVersion},
		},
		{
			name: "main module",
			bi: &debug.BuildInfo{
				Main: debug.Module{Path: ModulePath, Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.time", Value: "2024-01-01T00:00:00Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: Info{Version: develVersion, GitCommit: "abc123", BuildDate: "2024-01-01T00:00:00Z", Modified: true},
		},
		{
			name: "dependency",
			bi: &debug.BuildInfo{
				Main: debug.Module{Path: "example.com/app", Version: "v2.0.0"},
				Deps: []*debug.Module{
					{Path: "github.com/spf13/viper", Version: "v1.18.2"},
					{Path: ModulePath, Version: "v0.4.1"},
				},
			},
			want: Info{Version: "v0.4.1"},
		},
		{
			name: "replaced dependency",
			bi: &debug.BuildInfo{
				Main: debug.Module{Path: "example.com/app"},
				Deps: []*debug.Module{
					{Path: ModulePath, Version: "v0.4.1", Replace: &debug.Module{Path: "example.com/fork", Version: "v0.4.2-fix"}},
				},
			},
			want: Info{Version: "v0.4.2-fix"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.bi)
			if got.Version != tt.want.Version || got.GitCommit != tt.want.GitCommit ||
				got.BuildDate != tt.want.BuildDate || got.Modified != tt.want.Modified {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
			if got.Module != ModulePath || got.GoVersion != runtime.Version() {
				t.Errorf("resolve() = %+v", got)
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	if got := (Info{Version: "v1.0.0", Modified: true}).String(); got != "v1.0.0-dirty" {
		t.Errorf("String() = %q", got)
	}
	if got := (Info{Version: "v1.0.0"}).String(); got != "v1.0.0" {
		t.Errorf("String() = %q", got)
	}
}

func TestInfo_ToJSON(t *testing.T) {
	info := Info{Module: ModulePath, Version: "v1.0.0", GoVersion: "go1.23.0", Platform: "linux/amd64"}

	s, err := info.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	var parsed Info
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if parsed != info {
		t.Errorf("parsed = %+v, want %+v", parsed, info)
	}
	if strings.Contains(s, "gitCommit") {
		t.Errorf("empty gitCommit encoded: %s", s)
	}
}

func TestInfo_Text(t *testing.T) {
	info := Info{
		Module:    ModulePath,
		Version:   "v1.0.0",
		GitCommit: "abc123",
		GoVersion: "go1.23.0",
		Platform:  "linux/amd64",
	}

	text := info.Text()
	for _, field := range []string{"module:", ModulePath, "version:", "v1.0.0", "gitCommit:", "abc123", "platform:", "linux/amd64"} {
		if !strings.Contains(text, field) {
			t.Errorf("Text() missing field %q", field)
		}
	}
	// 空字段不应该出现
	if strings.Contains(text, "buildDate:") {
		t.Error("Text() should not contain empty buildDate")
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent("llmkit")
	if !strings.HasPrefix(ua, "llmkit/v") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(ua, runtime.Version()) || !strings.Contains(ua, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("UserAgent() = %q, missing runtime details", ua)
	}
}

package deps

import (
	"testing"
)

func releases(versions ...string) []Release {
	out := make([]Release, len(versions))
	for i, v := range versions {
		out[i] = Release{Version: v}
	}
	return out
}

var history = releases("2.2.1", "2.1.1", "2.1.0", "2.0.0", "1.9.0", "1.8.1", "1.8.0")

func TestLatestUpdateNoInstalled(t *testing.T) {
	tests := []struct {
		constraint string
		want       string
	}{
		{">2.0", "2.2.1"},
		{">=2.0", "2.2.1"},
		{"<=2.0", "2.0.0"},
		{"<=2.1", "2.1.1"},
		{"*", "2.2.1"},
		{"^1.0", "1.9.0"},
		{"~1.8", "1.8.1"},
		{"^1.0 || ^2.0", "2.2.1"},
		{">=1.8 <2.1", "2.0.0"},
		{">=1.8, <2.1", "2.0.0"},
		{"2.1.*", "2.1.1"},
		{"1.8.0 - 2.0", "2.0.0"},
		{"!=2.2.1", "2.1.1"},
		{"^2.1@dev", "2.2.1"},
		{"v2.0.0", "2.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			got, ok := LatestUpdate(history, tt.constraint, "")
			if !ok || got != tt.want {
				t.Errorf("LatestUpdate(%q) = %q, %v; want %q", tt.constraint, got, ok, tt.want)
			}
		})
	}
}

func TestLatestUpdateInstalled(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		installed  string
		want       string
		wantOK     bool
	}{
		{"newer in range", "^2.0", "2.1.0", "2.2.1", true},
		{"installed above range", "^1.0", "2.2.0", "", false},
		{"already newest", "^2.0", "2.2.1", "", false},
		{"v-prefixed installed", "^2.0", "v2.1.0", "2.2.1", true},
		{"unparsable installed is unknown", "^2.0", "dev-main", "2.2.1", true},
		{"double-digit minor", "^2.0", "2.10.0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LatestUpdate(history, tt.constraint, tt.installed)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("LatestUpdate(%q, %q) = %q, %v; want %q, %v", tt.constraint, tt.installed, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLatestUpdateNoMatch(t *testing.T) {
	for _, c := range []string{"^3.0", "dev-master", ">*", "<*", "not a version"} {
		if got, ok := LatestUpdate(history, c, ""); ok {
			t.Errorf("LatestUpdate(%q) = %q, want no result", c, got)
		}
	}
	if _, ok := LatestUpdate(nil, "*", ""); ok {
		t.Error("LatestUpdate(nil releases) should report no result")
	}
}

func TestLatestUpdateIgnoresRegistryOrder(t *testing.T) {
	shuffled := releases("1.8.0", "2.0.0", "2.2.1", "dev-main", "2.1.1", "1.9.0")
	got, ok := LatestUpdate(shuffled, "^2.0", "")
	if !ok || got != "2.2.1" {
		t.Errorf("LatestUpdate() = %q, %v; want 2.2.1", got, ok)
	}
}

func TestLatestUpdateKeepsPublishedVersion(t *testing.T) {
	got, ok := LatestUpdate(releases("v6.3.0", "v6.2.0"), "^6.0", "6.2.0")
	if !ok || got != "v6.3.0" {
		t.Errorf("LatestUpdate() = %q, %v; want v6.3.0", got, ok)
	}
}

func TestLatestUpdateSemanticPrecedence(t *testing.T) {
	got, ok := LatestUpdate(releases("2.9.0", "2.10.0"), "^2.0", "2.9.0")
	if !ok || got != "2.10.0" {
		t.Errorf("LatestUpdate() = %q, %v; want 2.10.0", got, ok)
	}
}

func TestLatestUpdatePrerelease(t *testing.T) {
	rs := releases("2.0.0-beta2", "2.0.0-beta1", "1.9.0")

	if got, _ := LatestUpdate(rs, "*", ""); got != "1.9.0" {
		t.Errorf("wildcard should skip prereleases, got %q", got)
	}
	if got, _ := LatestUpdate(rs, ">=2.0.0-beta1", ""); got != "2.0.0-beta2" {
		t.Errorf("prerelease comparator should admit same-version prereleases, got %q", got)
	}
}

func TestMatchingSortsDescending(t *testing.T) {
	got := Matching(releases("1.0.0", "3.0.0", "2.0.0"), "*")
	want := []string{"3.0.0", "2.0.0", "1.0.0"}
	if len(got) != len(want) {
		t.Fatalf("Matching() returned %d candidates, want %d", len(got), len(want))
	}
	for i, c := range got {
		if c.Release.Version != want[i] {
			t.Errorf("Matching()[%d] = %q, want %q", i, c.Release.Version, want[i])
		}
	}
}

package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"tools.zach/dev/rbxcord/internal/notify"
)

// ///////////////////////////////////////////////
// parseSemver Tests
// ///////////////////////////////////////////////

func TestParseSemver(t *testing.T) {
	tests := []struct {
		input string
		want  []int
	}{
		{"1.2.3", []int{1, 2, 3}},
		{"v1.2.3", []int{1, 2, 3}},
		{"0.0.0", []int{0, 0, 0}},
		{"0.0.0-dev", []int{0, 0, 0}},
		{"1.0.0-beta+build123", []int{1, 0, 0}},
		{"v0.1.0", []int{0, 1, 0}},
		{"10.20.30", []int{10, 20, 30}},
		{"1.2.3-rc.1", []int{1, 2, 3}},
		{"1.2.3+metadata", []int{1, 2, 3}},

		// Invalid inputs should return nil.
		{"", nil},
		{"1.2", nil},
		{"1", nil},
		{"not.a.version", nil},
		{"v", nil},
		{"1.2.x", nil},
		{"a.b.c", nil},
		{"1.2.3.4", nil},
		{"1..3", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseSemver(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseSemver(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

// ///////////////////////////////////////////////
// semverLess Tests
// ///////////////////////////////////////////////

func TestSemverLess(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"equal versions", "1.2.3", "1.2.3", false},
		{"a < b major", "0.9.9", "1.0.0", true},
		{"a > b major", "2.0.0", "1.9.9", false},
		{"a < b minor", "1.0.0", "1.1.0", true},
		{"a > b minor", "1.2.0", "1.1.0", false},
		{"a < b patch", "1.0.0", "1.0.1", true},
		{"a > b patch", "1.0.2", "1.0.1", false},
		{"with v prefix", "v0.1.0", "v0.2.0", true},
		{"mixed prefix", "0.1.0", "v0.2.0", true},
		{"pre-release stripped", "0.0.0-dev", "0.1.0", true},
		{"same with pre-release", "1.0.0-alpha", "1.0.0-beta", false}, // both parse to 1.0.0; no ordering between different pre-releases
		{"pre-release less than release", "0.1.0-dev", "0.1.0", true},
		{"release not less than pre-release", "0.1.0", "0.1.0-dev", false},
		{"pre-release less than release with v", "v1.0.0-rc.1", "v1.0.0", true},
		{"both pre-release equal numeric", "1.0.0-alpha", "1.0.0-alpha", false},
		{"invalid a", "invalid", "1.0.0", false},
		{"invalid b", "1.0.0", "invalid", false},
		{"both invalid", "foo", "bar", false},
		{"empty a", "", "1.0.0", false},
		{"empty b", "1.0.0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := semverLess(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("semverLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Checker
// ///////////////////////////////////////////////

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Notify(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, title+": "+message)
}

func manifestServer(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newTestChecker(url string, n notify.Notifier) *Checker {
	c := NewChecker(url, n)
	c.client.RetryMax = 0
	return c
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		current    string
		wantNewer  bool
		wantNotify bool
	}{
		{"newer release", http.StatusOK, `{".": "1.2.0"}`, "1.0.0", true, true},
		{"same release", http.StatusOK, `{".": "1.0.0"}`, "1.0.0", false, false},
		{"dev build behind release", http.StatusOK, `{".": "1.0.0"}`, "1.0.0-dev", true, true},
		{"older release", http.StatusOK, `{".": "0.9.0"}`, "1.0.0", false, false},
		{"missing key", http.StatusOK, `{"cmd/x": "5.0.0"}`, "1.0.0", false, false},
		{"server error", http.StatusInternalServerError, ``, "1.0.0", false, false},
		{"invalid json", http.StatusOK, `not json`, "1.0.0", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recorder{}
			c := newTestChecker(manifestServer(t, tt.status, tt.body), n)
			if got := c.Check(context.Background(), tt.current); got != tt.wantNewer {
				t.Errorf("Check = %v, want %v", got, tt.wantNewer)
			}
			if notified := len(n.msgs) > 0; notified != tt.wantNotify {
				t.Errorf("notified = %v (%v), want %v", notified, n.msgs, tt.wantNotify)
			}
		})
	}
}

func TestCheckNotificationText(t *testing.T) {
	n := &recorder{}
	c := newTestChecker(manifestServer(t, http.StatusOK, `{".": "2.0.0"}`), n)
	c.Check(context.Background(), "1.0.0")
	if len(n.msgs) != 1 || !strings.Contains(n.msgs[0], "2.0.0") || !strings.Contains(n.msgs[0], "1.0.0") {
		t.Errorf("notification = %v", n.msgs)
	}
}

func TestCheckWithoutURL(t *testing.T) {
	n := &recorder{}
	if NewChecker("", n).Check(context.Background(), "1.0.0") {
		t.Error("Check without URL reported an update")
	}
}

func TestLatest(t *testing.T) {
	c := newTestChecker(manifestServer(t, http.StatusOK, `{".": "2.0.0"}`), nil)
	got, err := c.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got != "2.0.0" {
		t.Errorf("Latest = %q, want 2.0.0", got)
	}
}

func TestLatestErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		status int
		body   string
	}{
		{"non-200", http.StatusNotFound, ``},
		{"invalid json", http.StatusOK, `{`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestChecker(manifestServer(t, tc.status, tc.body), nil)
			if _, err := c.Latest(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestManifestURL(t *testing.T) {
	oldOwner, oldRepo := owner, repo
	t.Cleanup(func() { owner, repo = oldOwner, oldRepo })

	owner, repo = "", ""
	if got := ManifestURL(); got != "" {
		t.Errorf("ManifestURL without coordinates = %q, want empty", got)
	}
	owner, repo = "zach", "rbxcord"
	want := "https://raw.githubusercontent.com/zach/rbxcord/main/.release-manifest.json"
	if got := ManifestURL(); got != want {
		t.Errorf("ManifestURL = %q, want %q", got, want)
	}
}

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{"root entry", `{".": "1.4.0", "tools": "0.2.0"}`, "1.4.0", false},
		{"no root entry", `{"tools": "0.2.0"}`, "", false},
		{"malformed", `[1, 2]`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseManifest([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseManifest error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseManifest = %q, want %q", got, tt.want)
			}
		})
	}
}

// Tests for [ExtractPlaceID] covering every rule, priority between rules,
// and lines that carry no identifier.
package logtail

import "testing"

func TestExtractPlaceID(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   string
		wantOK bool
	}{
		{"launching experience", "2024-01-01T00:00:00Z,0.1,abc,6 [FLog::Output] Launching experience at 920587237", "920587237", true},
		{"joining game with bang", "! Joining game 'a1b2' place 606849621 at 10.0.0.1", "606849621", true},
		{"joining game", "[FLog::GameJoinUtil] Joining game 'xyz' place 2753915549 at 1.2.3.4", "2753915549", true},
		{"lowercase placeid", "Report placeid:123456 done", "123456", true},
		{"camel placeId", "request placeId:777 universe", "777", true},
		{"PlaceId equals", "url?PlaceId=4924922222&x=1", "4924922222", true},
		{"universeId fallback", "universeId:3131", "3131", true},
		{"launching beats placeid", "Launching experience at 11 placeid:22", "11", true},
		{"placeid beats universeId", "universeId:5 placeid:6", "6", true},
		{"wrong casing ignored", "PLACEID:42", "", false},
		{"no digits", "Launching experience at now", "", false},
		{"empty", "", "", false},
		{"unrelated", "[FLog::Network] Connection lost", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPlaceID(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ExtractPlaceID(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractPlaceID(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestExtractPlaceIDDigitsUnmodified(t *testing.T) {
	got, ok := ExtractPlaceID("PlaceId=000123")
	if !ok || got != "000123" {
		t.Errorf("got (%q, %v), want (\"000123\", true)", got, ok)
	}
}

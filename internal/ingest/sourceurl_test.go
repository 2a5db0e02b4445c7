package ingest

import "testing"

func TestParseYouTubeVideoID(t *testing.T) {
	cases := []struct {
		url     string
		wantID  string
		wantOK  bool
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ&feature=share", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=abc123", "abc123", true},
		{"https://example.com/watch?v=abc123", "", false},
		{"not a url at all \x7f", "", false},
		{"https://youtu.be/", "", false},
	}

	for _, c := range cases {
		id, ok := ParseYouTubeVideoID(c.url)
		if ok != c.wantOK || id != c.wantID {
			t.Errorf("ParseYouTubeVideoID(%q) = (%q, %v), want (%q, %v)", c.url, id, ok, c.wantID, c.wantOK)
		}
	}
}

func TestTailBytes(t *testing.T) {
	if got := tailBytes([]byte("short"), 10); got != "short" {
		t.Errorf("tailBytes should return whole string when under limit, got %q", got)
	}
	if got := tailBytes([]byte("abcdefghij"), 4); got != "ghij" {
		t.Errorf("tailBytes should return last n bytes, got %q", got)
	}
}

func TestContainsBotCheckSignal(t *testing.T) {
	if !containsBotCheckSignal("ERROR: Sign in to confirm you're not a bot") {
		t.Error("expected bot-check signal to be detected")
	}
	if containsBotCheckSignal("network timeout") {
		t.Error("did not expect bot-check signal to be detected")
	}
}

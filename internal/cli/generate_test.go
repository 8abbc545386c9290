package cli

import (
	"encoding/json"
	"testing"

	"github.com/tingshu-cli/tingshu/internal/logging"
	"github.com/tingshu-cli/tingshu/internal/subtitle"
)

func init() {
	logger = logging.NewNop()
}

func entryFromLine(t *testing.T, line string) *subtitle.Entry {
	t.Helper()
	entry := subtitle.NewEntry()
	if err := json.Unmarshal([]byte(line), entry); err != nil {
		t.Fatalf("bad test entry %s: %v", line, err)
	}
	return entry
}

func TestIsValidTextMode(t *testing.T) {
	tests := []struct {
		mode string
		want bool
	}{
		{"english", true},
		{"English", true},
		{" chinese ", true},
		{"both", true},
		{"BOTH", true},
		{"bilingual", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isValidTextMode(tt.mode); got != tt.want {
			t.Errorf("isValidTextMode(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestSelectSpeechText(t *testing.T) {
	entry := entryFromLine(t,
		`{"index":1,"timestamp":"00:00:01","english_text":"hello","chinese_text":"你好"}`)

	if got := selectSpeechText(entry, "english"); got != "hello" {
		t.Errorf("english mode = %q", got)
	}
	if got := selectSpeechText(entry, "chinese"); got != "你好" {
		t.Errorf("chinese mode = %q", got)
	}
	if got := selectSpeechText(entry, "both"); got != "hello\n你好" {
		t.Errorf("both mode = %q", got)
	}
}

func TestSelectSpeechTextMissingFields(t *testing.T) {
	englishOnly := entryFromLine(t,
		`{"index":1,"timestamp":"00:00:01","english_text":"hello"}`)
	if got := selectSpeechText(englishOnly, "both"); got != "hello" {
		t.Errorf("both mode without chinese = %q", got)
	}
	if got := selectSpeechText(englishOnly, "chinese"); got != "" {
		t.Errorf("chinese mode without chinese = %q", got)
	}

	chineseOnly := entryFromLine(t,
		`{"index":2,"timestamp":"00:00:02","chinese_text":"你好"}`)
	if got := selectSpeechText(chineseOnly, "both"); got != "你好" {
		t.Errorf("both mode without english = %q", got)
	}
}

func TestBuildSpeechJobsSkipsSilentEntries(t *testing.T) {
	entries := []*subtitle.Entry{
		entryFromLine(t, `{"index":1,"timestamp":"00:00:01","english_text":"one"}`),
		entryFromLine(t, `{"index":2,"timestamp":"00:00:02"}`),
		entryFromLine(t, `{"index":3,"timestamp":"00:00:03","english_text":"three"}`),
	}

	jobs, segments := buildSpeechJobs(entries, "english", "/tmp/work", ".mp3")
	if len(jobs) != 2 || len(segments) != 2 {
		t.Fatalf("got %d jobs, %d segments, want 2 and 2", len(jobs), len(segments))
	}
	if jobs[0].Text != "one" || jobs[1].Text != "three" {
		t.Errorf("unexpected job texts: %q, %q", jobs[0].Text, jobs[1].Text)
	}
	if jobs[0].OutPath != segments[0] || jobs[1].OutPath != segments[1] {
		t.Error("segment order does not match job order")
	}
}

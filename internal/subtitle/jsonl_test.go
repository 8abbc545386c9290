package subtitle

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tingshu-cli/tingshu/internal/logging"
)

// fakeManager is an in-memory fileio.Manager for tests.
type fakeManager struct {
	files    map[string]string
	readErr  error
	writeErr error
}

func newFakeManager() *fakeManager {
	return &fakeManager{files: make(map[string]string)}
}

func (m *fakeManager) ReadTextFile(path string) (string, error) {
	if m.readErr != nil {
		return "", m.readErr
	}
	content, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return content, nil
}

func (m *fakeManager) WriteTextFile(path, content string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.files[path] = content
	return nil
}

func TestReaderAllValidLines(t *testing.T) {
	fm := newFakeManager()
	fm.files["subs.jsonl"] = strings.Join([]string{
		`{"index":1,"timestamp":"00:00:01","english_text":"one"}`,
		`{"index":2,"timestamp":"00:00:02","english_text":"two"}`,
		`{"index":3,"timestamp":"00:00:03","english_text":"three"}`,
	}, "\n")

	entries := NewReader(fm, logging.NewNop()).Read("subs.jsonl")
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, entry := range entries {
		want := fmt.Sprintf("%d", i+1)
		if entry.Index() != want {
			t.Errorf("entry %d has index %q, want %q", i, entry.Index(), want)
		}
	}
}

func TestReaderSkipsInvalidLines(t *testing.T) {
	fm := newFakeManager()
	fm.files["subs.jsonl"] = strings.Join([]string{
		`{"index":1,"timestamp":"00:00:01"}`,
		``,
		`not valid json`,
		`{"timestamp":"00:00:02"}`,
		`   `,
		`42`,
		`[1,2,3]`,
		`{"index":2,"timestamp":"00:00:05"}`,
	}, "\n")

	entries := NewReader(fm, logging.NewNop()).Read("subs.jsonl")
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Index() != "1" || entries[1].Index() != "2" {
		t.Errorf("valid entries out of order: %s, %s",
			entries[0].Index(), entries[1].Index())
	}
}

func TestReaderSkipsLineWithTrailingData(t *testing.T) {
	fm := newFakeManager()
	fm.files["subs.jsonl"] = strings.Join([]string{
		`{"index":1,"timestamp":"00:00:01"}`,
		`{"index":2,"timestamp":"00:00:02"} trailing garbage`,
		`{"index":3,"timestamp":"00:00:03"}`,
	}, "\n")

	entries := NewReader(fm, logging.NewNop()).Read("subs.jsonl")
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Index() != "1" || entries[1].Index() != "3" {
		t.Errorf("unexpected entries: %s, %s",
			entries[0].Index(), entries[1].Index())
	}
}

func TestReaderKeepsSingleValidLine(t *testing.T) {
	fm := newFakeManager()
	fm.files["subs.jsonl"] = strings.Join([]string{
		`{"index":1,"timestamp":"00:00:01"}`,
		`not valid json`,
		`{"timestamp":"00:00:02"}`,
	}, "\n")

	entries := NewReader(fm, logging.NewNop()).Read("subs.jsonl")
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	data, err := entries[0].MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"index":1,"timestamp":"00:00:01"}` {
		t.Errorf("unexpected entry: %s", data)
	}
}

func TestReaderUnreadableFileReturnsEmpty(t *testing.T) {
	fm := newFakeManager()
	fm.readErr = fmt.Errorf("permission denied")

	entries := NewReader(fm, logging.NewNop()).Read("subs.jsonl")
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestReaderToleratesTrailingNewline(t *testing.T) {
	fm := newFakeManager()
	fm.files["subs.jsonl"] = `{"index":1,"timestamp":"00:00:01"}` + "\n"

	entries := NewReader(fm, logging.NewNop()).Read("subs.jsonl")
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
}

func TestWriterProducesCompactLines(t *testing.T) {
	entry1 := NewEntry()
	_ = entry1.Set(KeyIndex, 1)
	_ = entry1.Set(KeyTimestamp, "00:00:01")
	_ = entry1.Set(KeyEnglishText, "hello")
	_ = entry1.Set(KeyChineseText, "你好")

	entry2 := NewEntry()
	_ = entry2.Set(KeyIndex, 2)
	_ = entry2.Set(KeyTimestamp, "00:00:02")

	fm := newFakeManager()
	if err := NewWriter(fm, logging.NewNop()).Write([]*Entry{entry1, entry2}, "out.jsonl"); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	want := `{"index":1,"timestamp":"00:00:01","english_text":"hello","chinese_text":"你好"}` +
		"\n" + `{"index":2,"timestamp":"00:00:02"}`
	if fm.files["out.jsonl"] != want {
		t.Errorf("wrote:\n%s\nwant:\n%s", fm.files["out.jsonl"], want)
	}
}

func TestWriterEmptySequence(t *testing.T) {
	fm := newFakeManager()
	if err := NewWriter(fm, logging.NewNop()).Write(nil, "out.jsonl"); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if fm.files["out.jsonl"] != "" {
		t.Errorf("expected empty file, got %q", fm.files["out.jsonl"])
	}

	entries := NewReader(fm, logging.NewNop()).Read("out.jsonl")
	if len(entries) != 0 {
		t.Errorf("reading empty file returned %d entries", len(entries))
	}
}

func TestWriterPropagatesIOError(t *testing.T) {
	entry := NewEntry()
	_ = entry.Set(KeyIndex, 1)
	_ = entry.Set(KeyTimestamp, "00:00:01")

	fm := newFakeManager()
	fm.writeErr = fmt.Errorf("disk full")

	err := NewWriter(fm, logging.NewNop()).Write([]*Entry{entry}, "out.jsonl")
	if err == nil {
		t.Fatal("expected write error to propagate")
	}
}

func TestRoundTrip(t *testing.T) {
	fm := newFakeManager()
	fm.files["in.jsonl"] = strings.Join([]string{
		`{"index":1,"timestamp":"00:00:01","english_text":"hi","chinese_text":"嗨","has_analysis":false}`,
		`{"index":"2b","timestamp":2.5,"extra":{"nested":[1,"два"]}}`,
	}, "\n")

	log := logging.NewNop()
	entries := NewReader(fm, log).Read("in.jsonl")
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	if err := NewWriter(fm, log).Write(entries, "out.jsonl"); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if fm.files["out.jsonl"] != fm.files["in.jsonl"] {
		t.Errorf("round trip changed content:\n got %s\nwant %s",
			fm.files["out.jsonl"], fm.files["in.jsonl"])
	}
}

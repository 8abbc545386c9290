package subtitle

import (
	"fmt"
	"strings"

	"github.com/tingshu-cli/tingshu/internal/fileio"
	"github.com/tingshu-cli/tingshu/internal/logging"
)

// Reader loads JSONL subtitle files. Malformed lines are skipped with a
// diagnostic; an unreadable file yields an empty result, never an error.
type Reader struct {
	files fileio.Manager
	log   *logging.Logger
}

func NewReader(files fileio.Manager, log *logging.Logger) *Reader {
	return &Reader{files: files, log: log}
}

// Read parses one entry per non-blank line, in file order. Lines that fail
// to parse as a JSON object or lack index/timestamp are dropped.
func (r *Reader) Read(path string) []*Entry {
	text, err := r.files.ReadTextFile(path)
	if err != nil {
		r.log.Warnw("Failed to read subtitle file",
			"path", path,
			"error", err,
		)
		return nil
	}

	var entries []*Entry
	for i, line := range strings.Split(text, "\n") {
		lineNum := i + 1
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry := NewEntry()
		if err := entry.UnmarshalJSON([]byte(line)); err != nil {
			r.log.Warnw("Skipping malformed subtitle line",
				"path", path,
				"line", lineNum,
				"error", err,
			)
			continue
		}

		if !entry.HasRequiredFields() {
			r.log.Warnw("Skipping subtitle line without index/timestamp",
				"path", path,
				"line", lineNum,
			)
			continue
		}

		entries = append(entries, entry)
	}

	return entries
}

// Writer serializes entries to JSONL: compact single-line JSON joined by
// newlines, no trailing newline. Unlike the Reader it fails loud.
type Writer struct {
	files fileio.Manager
	log   *logging.Logger
}

func NewWriter(files fileio.Manager, log *logging.Logger) *Writer {
	return &Writer{files: files, log: log}
}

func (w *Writer) Write(entries []*Entry, path string) error {
	lines := make([]string, 0, len(entries))
	for i, entry := range entries {
		data, err := entry.MarshalJSON()
		if err != nil {
			err = fmt.Errorf("failed to serialize entry %d: %w", i, err)
			w.log.Errorw("Failed to write subtitle file",
				"path", path,
				"error", err,
			)
			return err
		}
		lines = append(lines, string(data))
	}

	if err := w.files.WriteTextFile(path, strings.Join(lines, "\n")); err != nil {
		w.log.Errorw("Failed to write subtitle file",
			"path", path,
			"error", err,
		)
		return err
	}
	return nil
}

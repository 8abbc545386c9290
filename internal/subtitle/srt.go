package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cue is one parsed SRT block before conversion to a JSONL entry.
type Cue struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

var srtTimestampRegex = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
)

// ParseSRT parses SRT subtitle text into cues. Unlike the JSONL reader,
// import is fail-loud: a malformed timestamp aborts the parse.
func ParseSRT(text string) ([]Cue, error) {
	var cues []Cue
	var current *Cue
	var textLines []string

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}

	for lineNum, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if lineNum == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			index, err := strconv.Atoi(strings.TrimSpace(line))
			if err == nil {
				current = &Cue{Index: index}
				continue
			}
		}

		if current != nil && current.StartTime == 0 && current.EndTime == 0 {
			matches := srtTimestampRegex.FindStringSubmatch(line)
			if len(matches) == 9 {
				start, err := parseSRTTimestamp(
					matches[1], matches[2], matches[3], matches[4],
				)
				if err != nil {
					return nil, fmt.Errorf(
						"invalid start timestamp at line %d: %w",
						lineNum+1,
						err,
					)
				}
				end, err := parseSRTTimestamp(
					matches[5], matches[6], matches[7], matches[8],
				)
				if err != nil {
					return nil, fmt.Errorf(
						"invalid end timestamp at line %d: %w",
						lineNum+1,
						err,
					)
				}
				current.StartTime = start
				current.EndTime = end
				continue
			}
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	return cues, nil
}

// CuesToEntries converts SRT cues to JSONL entries. The cue start becomes
// the timestamp (SRT clock format) and the span is kept in duration_ms.
func CuesToEntries(cues []Cue) ([]*Entry, error) {
	entries := make([]*Entry, 0, len(cues))
	for _, cue := range cues {
		entry := NewEntry()
		if err := entry.Set(KeyIndex, cue.Index); err != nil {
			return nil, err
		}
		if err := entry.Set(KeyTimestamp, FormatSRTTime(cue.StartTime)); err != nil {
			return nil, err
		}
		durationMS := (cue.EndTime - cue.StartTime).Milliseconds()
		if err := entry.Set("duration_ms", durationMS); err != nil {
			return nil, err
		}
		if err := entry.Set(KeyEnglishText, cue.Text); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseSRTTimestamp(hours, minutes, seconds, millis string) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// FormatSRTTime renders a duration as an SRT clock value (00:01:02,345).
func FormatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

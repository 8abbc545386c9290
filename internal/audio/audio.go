package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/tingshu-cli/tingshu/internal/ffmpeg"
)

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// duration of an audio file
func GetDuration(filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var seconds float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// ConcatOptions controls audiobook assembly.
type ConcatOptions struct {
	// Gap inserts silence between consecutive segments.
	Gap time.Duration
	// WorkDir holds the concat list and generated silence file.
	WorkDir string
}

// Concat joins audio segments into a single file, re-encoding for the
// output extension. Segment order is the caller's.
func Concat(
	ctx context.Context,
	segments []string,
	outputPath string,
	opts ConcatOptions,
) error {
	if len(segments) == 0 {
		return fmt.Errorf("no audio segments to concatenate")
	}
	for _, seg := range segments {
		if _, err := os.Stat(seg); os.IsNotExist(err) {
			return fmt.Errorf("segment not found: %s", seg)
		}
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(outputPath)
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	silencePath := ""
	if opts.Gap > 0 {
		silencePath = filepath.Join(workDir, "silence"+filepath.Ext(segments[0]))
		if err := GenerateSilence(ctx, opts.Gap, silencePath); err != nil {
			return fmt.Errorf("failed to generate gap silence: %w", err)
		}
	}

	listPath := filepath.Join(workDir, "concat.txt")
	if err := writeConcatList(listPath, segments, silencePath); err != nil {
		return err
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	err = ffmpeg.Input(listPath, ffmpeg.KwArgs{
		"f":    "concat",
		"safe": 0,
	}).
		Output(outputPath, ffmpeg.KwArgs{"y": ""}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("concatenation failed: %w", err)
	}

	return nil
}

// writeConcatList writes an ffmpeg concat demuxer list, interleaving the
// silence file between segments when present.
func writeConcatList(listPath string, segments []string, silencePath string) error {
	var sb strings.Builder
	for i, seg := range segments {
		if i > 0 && silencePath != "" {
			sb.WriteString(fmt.Sprintf("file '%s'\n", escapeConcatPath(silencePath)))
		}
		sb.WriteString(fmt.Sprintf("file '%s'\n", escapeConcatPath(seg)))
	}

	if err := os.WriteFile(listPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	return nil
}

// concat demuxer quoting: single quotes close, escape, reopen
func escapeConcatPath(path string) string {
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	return strings.ReplaceAll(path, "'", `'\''`)
}

// GenerateSilence writes a silent audio file of the given duration,
// matching the Gemini/OpenAI segment format closely enough to concat.
func GenerateSilence(
	ctx context.Context,
	duration time.Duration,
	outputPath string,
) error {
	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Input("anullsrc=r=24000:cl=mono", ffmpeg.KwArgs{
		"f": "lavfi",
	}).
		Output(outputPath, ffmpeg.KwArgs{
			"t": fmt.Sprintf("%.3f", duration.Seconds()),
			"y": "",
		}).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("silence generation failed: %w", err)
	}

	return nil
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".m4a":  true,
		".m4b":  true,
		".wma":  true,
		".aiff": true,
	}
	return audioExts[ext]
}

// removes synthesized segment files
func CleanupSegments(paths []string) error {
	var lastErr error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}

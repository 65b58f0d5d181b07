package ai

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// FFmpegExtractor extracts single frames and probes durations by shelling
// out to ffmpeg/ffprobe. One instance is created at process start and shared
// across videos.
type FFmpegExtractor struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
	frameSize   int
}

func NewFFmpegExtractor(frameSize int) (*FFmpegExtractor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	// ffprobe is optional; duration falls back to parsing ffmpeg output.
	ffprobePath, _ := exec.LookPath("ffprobe")

	tempDir := filepath.Join(os.TempDir(), "videoproc-frames")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	if frameSize <= 0 {
		frameSize = 512
	}

	return &FFmpegExtractor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tempDir:     tempDir,
		frameSize:   frameSize,
	}, nil
}

func (fe *FFmpegExtractor) ExtractFrameAt(ctx context.Context, mediaPath string, timestamp float64) ([]byte, error) {
	if _, err := os.Stat(mediaPath); err != nil {
		return nil, fmt.Errorf("media file not accessible: %w", err)
	}

	tempFile, err := fe.createTempFrame()
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempFile)

	args := []string{
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", mediaPath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale='min(%d,iw)':-2", fe.frameSize),
		"-q:v", "2",
		"-f", "mjpeg",
		"-y",
		tempFile,
	}

	cmd := exec.CommandContext(ctx, fe.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to extract frame at %.3fs: %w (%s)", timestamp, err, lastLine(stderr.String()))
	}

	data, err := os.ReadFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted frame: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame at %.3fs", timestamp)
	}

	return data, nil
}

func (fe *FFmpegExtractor) ProbeDuration(ctx context.Context, mediaPath string) (float64, error) {
	if _, err := os.Stat(mediaPath); err != nil {
		return 0, fmt.Errorf("media file not accessible: %w", err)
	}

	if fe.ffprobePath != "" {
		cmd := exec.CommandContext(ctx, fe.ffprobePath,
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			mediaPath)

		var stdout bytes.Buffer
		cmd.Stdout = &stdout

		if err := cmd.Run(); err == nil {
			durationStr := strings.TrimSpace(stdout.String())
			if duration, err := strconv.ParseFloat(durationStr, 64); err == nil && duration > 0 {
				return duration, nil
			}
		}
		log.Printf("ffprobe duration failed for %s, falling back to ffmpeg", filepath.Base(mediaPath))
	}

	// Parse "Duration: HH:MM:SS.ss," out of ffmpeg's banner output.
	cmd := exec.CommandContext(ctx, fe.ffmpegPath, "-i", mediaPath, "-f", "null", "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()

	return parseDurationBanner(stderr.String())
}

func parseDurationBanner(output string) (float64, error) {
	const durationPrefix = "Duration: "
	startIndex := strings.Index(output, durationPrefix)
	if startIndex == -1 {
		return 0, fmt.Errorf("duration not found in ffmpeg output")
	}

	startIndex += len(durationPrefix)
	endIndex := strings.Index(output[startIndex:], ",")
	if endIndex == -1 {
		return 0, fmt.Errorf("invalid duration format")
	}

	parts := strings.Split(output[startIndex:startIndex+endIndex], ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration format: %s", output[startIndex:startIndex+endIndex])
	}

	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}

	return hours*3600 + minutes*60 + seconds, nil
}

// createTempFrame reserves a unique output path. Concurrent workers can
// sample the same timestamp of different videos, so the path must not be
// derived from the timestamp.
func (fe *FFmpegExtractor) createTempFrame() (string, error) {
	f, err := os.CreateTemp(fe.tempDir, "frame_*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create temp frame file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp frame file: %w", err)
	}
	return f.Name(), nil
}

func (fe *FFmpegExtractor) Cleanup() error {
	return os.RemoveAll(fe.tempDir)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

// Package audio prepares media for local inference engines through ffmpeg.
package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"captionflow/internal/app/util/command"
)

// FFProbeOutput is the subset of `ffprobe -show_streams` we read.
type FFProbeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate int    `json:"sample_rate,string"`
	} `json:"streams"`
}

// Converter wraps the ffmpeg and ffprobe binaries.
type Converter struct {
	runner  command.CmdRunner
	ffmpeg  string
	ffprobe string
}

// NewConverter uses ffmpeg/ffprobe from PATH when the names are empty.
func NewConverter(runner command.CmdRunner, ffmpeg, ffprobe string) *Converter {
	if runner == nil {
		runner = command.NewCmdRunner()
	}
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &Converter{runner: runner, ffmpeg: ffmpeg, ffprobe: ffprobe}
}

// Duration returns the media duration in whole seconds.
func (c *Converter) Duration(ctx context.Context, filePath string) (int, error) {
	out, err := c.runner.Run(ctx, c.ffprobe, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", filePath)
	if err != nil {
		return 0, err
	}
	durationFloat, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration: %w", err)
	}
	return int(math.Round(durationFloat)), nil
}

// Is16kHzWav reports whether filePath already is 16 kHz PCM.
func (c *Converter) Is16kHzWav(ctx context.Context, filePath string) (bool, error) {
	out, err := c.runner.Run(ctx, c.ffprobe, "-v", "quiet", "-print_format", "json", "-show_streams", filePath)
	if err != nil {
		return false, err
	}

	var probeOutput FFProbeOutput
	if err := json.Unmarshal(out, &probeOutput); err != nil {
		return false, fmt.Errorf("parse ffprobe output: %w", err)
	}
	for _, stream := range probeOutput.Streams {
		if stream.CodecType == "audio" && stream.CodecName == "pcm_s16le" && stream.SampleRate == 16000 {
			return true, nil
		}
	}
	return false, nil
}

// ConvertTo16kHzWav writes a 16 kHz mono WAV next to inputFilePath and
// returns its path. Inputs already in that format are returned unchanged.
func (c *Converter) ConvertTo16kHzWav(ctx context.Context, inputFilePath string) (string, error) {
	ok, err := c.Is16kHzWav(ctx, inputFilePath)
	if err != nil {
		return "", fmt.Errorf("error checking input file: %w", err)
	}
	if ok {
		return inputFilePath, nil
	}

	outputWavPath := strings.TrimSuffix(inputFilePath, filepath.Ext(inputFilePath)) + "_16khz.wav"
	args := []string{"-y", "-i", inputFilePath, "-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", outputWavPath}
	if _, err := c.runner.Run(ctx, c.ffmpeg, args...); err != nil {
		return "", fmt.Errorf("ffmpeg conversion failed: %w", err)
	}
	return outputWavPath, nil
}

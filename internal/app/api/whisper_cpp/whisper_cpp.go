package whisper_cpp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/audio"
	"captionflow/internal/app/caption"
	"captionflow/internal/app/util/command"
	"captionflow/internal/app/util/files"
)

const name = "whisper_cpp"

// LocalConfig points at a whisper.cpp build and a ggml model.
type LocalConfig struct {
	BinaryPath string
	ModelPath  string
	Prompt     string
	Threads    int

	FFmpeg  string
	FFprobe string
}

// LocalTranscriber implements local transcription, using local binary commands.
type LocalTranscriber struct {
	config    LocalConfig
	runner    command.CmdRunner
	converter *audio.Converter
}

// NewLocalTranscriber creates a new instance of LocalTranscriber. A nil runner
// executes real processes.
func NewLocalTranscriber(config LocalConfig, runner command.CmdRunner) *LocalTranscriber {
	if runner == nil {
		runner = command.NewCmdRunner()
	}
	return &LocalTranscriber{
		config:    config,
		runner:    runner,
		converter: audio.NewConverter(runner, config.FFmpeg, config.FFprobe),
	}
}

func (lt *LocalTranscriber) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:                 name,
		DisplayName:          "whisper.cpp (local)",
		Type:                 provider.ProviderTypeLocal,
		Mode:                 provider.ModeSync,
		AcceptsUpload:        true,
		SupportsAutoLanguage: true,
		DefaultModel:         filepath.Base(lt.config.ModelPath),
	}
}

// Submit converts the input to 16 kHz WAV when needed, runs whisper.cpp with
// SRT output next to the input file and parses the result. Intermediate
// files are removed before returning.
func (lt *LocalTranscriber) Submit(ctx context.Context, req *provider.TranscriptionRequest) (*provider.Job, error) {
	if err := provider.CheckMedia(lt.Info(), req.Media); err != nil {
		return nil, err
	}
	inputFilePath, _ := req.Media.Path()

	wavPath, err := lt.converter.ConvertTo16kHzWav(ctx, inputFilePath)
	if err != nil {
		return nil, err
	}
	if wavPath != inputFilePath {
		defer os.Remove(wavPath)
	}

	outputBase := strings.TrimSuffix(inputFilePath, filepath.Ext(inputFilePath)) + "_whisper"
	defer os.Remove(outputBase + ".srt")

	lang, _ := provider.LanguageHint(req.Language, true)
	args := []string{
		"-m", lt.config.ModelPath,
		"-l", lang,
		"-osrt",
		"-f", wavPath,
		"-of", outputBase,
	}
	if lt.config.Prompt != "" {
		args = append(args, "--prompt", lt.config.Prompt)
	}
	if lt.config.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(lt.config.Threads))
	}

	if _, err := lt.runner.Run(ctx, lt.config.BinaryPath, args...); err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w", err)
	}

	output, err := files.ReadOutputFile(outputBase + ".srt")
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}
	doc, err := caption.ParseProviderSRT(output)
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp output: %w", err)
	}

	job := provider.NewDoneJob(name, doc)
	job.Title = req.Title
	return job, nil
}

func (lt *LocalTranscriber) FetchResult(_ context.Context, job *provider.Job, _ string) (*caption.Document, error) {
	if job.Document == nil {
		return nil, provider.ErrNoDocument(name, job)
	}
	return job.Document, nil
}

// HealthCheck verifies that the binary and model exist.
func (lt *LocalTranscriber) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(lt.config.BinaryPath); err != nil {
		return fmt.Errorf("whisper.cpp binary: %w", err)
	}
	if _, err := os.Stat(lt.config.ModelPath); err != nil {
		return fmt.Errorf("whisper.cpp model: %w", err)
	}
	return nil
}

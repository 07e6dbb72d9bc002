package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"captionflow/cmd/v2s/cmd/shared"
	"captionflow/internal/app"
	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/delivery"
	"captionflow/internal/app/media"
	"captionflow/internal/app/pipeline"
	"captionflow/internal/app/progress"
	"captionflow/internal/app/util/files"
)

var (
	providerName string
	language     string
	apiKey       string
	outputPath   string
	format       string
	noWait       bool
)

func init() {
	Cmd.PersistentFlags().StringVarP(&providerName, "provider", "p", "", "ASR provider, defaults to ASR_DEFAULT_PROVIDER")
	Cmd.PersistentFlags().StringVarP(&apiKey, "apiKey", "k", "", "provider credential, overrides the configured key")
	Cmd.Flags().StringVarP(&language, "language", "l", "", "spoken language code, defaults to DEFAULT_LANGUAGE")
	Cmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "output file, stdout for srt when omitted")
	Cmd.PersistentFlags().StringVarP(&format, "format", "f", "", "srt or xlsx, guessed from --output")
	Cmd.Flags().BoolVar(&noWait, "no-wait", false, "print the job id of asynchronous providers instead of waiting")

	Cmd.AddCommand(statusCmd)
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <file|url>",
	Short: "Transcribe a media file, media URL or page URL into captions",
	Long: `Transcribe a media file, media URL or page URL into captions

- Local paths are uploaded to the provider as files
- URLs ending in a media extension are passed straight to providers that accept URLs
- Any other URL is treated as a page and the media is extracted from it`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outFormat, err := shared.FormatFor(format, outputPath)
		if err != nil {
			return err
		}

		a, err := shared.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Logger.Sync()

		src, closeSrc, err := sourceFor(args[0])
		if err != nil {
			return err
		}
		defer closeSrc()

		job, err := run(cmd.Context(), a, src)
		if err != nil {
			return err
		}
		if !job.State.Terminal() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s job %s is %s\n", job.Provider, job.ID, job.State)
			return nil
		}
		return writeJob(cmd, job, args[0], outFormat)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Check an asynchronous transcription job once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := shared.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Logger.Sync()

		job, err := a.Orchestrator.JobStatus(cmd.Context(), providerName, args[0], apiKey)
		if err != nil {
			return err
		}
		if job.State != provider.StateDone {
			if job.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s job %s is %s: %s\n", job.Provider, job.ID, job.State, job.Error)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s job %s is %s\n", job.Provider, job.ID, job.State)
			}
			return nil
		}
		outFormat, err := shared.FormatFor(format, outputPath)
		if err != nil {
			return err
		}
		return writeJob(cmd, job, job.ID, outFormat)
	},
}

// sourceFor opens arg as a local file when it exists, otherwise parses it
// as a URL.
func sourceFor(arg string) (media.Source, func(), error) {
	if _, err := os.Stat(arg); err == nil {
		f, err := os.Open(arg)
		if err != nil {
			return media.Source{}, nil, fmt.Errorf("open media: %w", err)
		}
		return media.FromUpload(f, filepath.Base(arg)), func() { f.Close() }, nil
	}
	src, err := media.SourceFromURL(arg)
	if err != nil {
		return media.Source{}, nil, fmt.Errorf("%s is neither a file nor a media URL: %w", arg, err)
	}
	return src, func() {}, nil
}

func run(ctx context.Context, a *app.App, src media.Source) (provider.Job, error) {
	session, err := pipeline.NewSession(a.Settings.WorkDir, "", apiKey)
	if err != nil {
		return provider.Job{}, err
	}
	defer session.Close()

	pm := progress.NewManager(progress.Config{Enabled: progress.ShouldShowProgress(false), Writer: os.Stderr})
	spinner := pm.CreateSpinner("Transcribing")

	job, err := a.Orchestrator.Transcribe(ctx, session, src, pipeline.Options{
		Provider: providerName,
		Language: language,
		Wait:     !noWait,
		OnUpdate: func(j *provider.Job) {
			a.Logger.Debug("job status",
				zap.String("job_id", j.ID),
				zap.String("state", string(j.State)))
		},
	})
	if err != nil {
		spinner.Abort()
		pm.Wait()
		return job, err
	}
	spinner.Complete()
	pm.Wait()
	return job, nil
}

func writeJob(cmd *cobra.Command, job provider.Job, input string, outFormat delivery.Format) error {
	if job.State != provider.StateDone {
		return fmt.Errorf("%s job %s %s: %s", job.Provider, job.ID, job.State, job.Error)
	}
	title := job.Title
	if title == "" {
		title = files.TitleFromFilename(input)
	}
	artifact, err := delivery.Export(job.Document, title, outFormat)
	if err != nil {
		return err
	}
	where, err := shared.WriteArtifact(cmd.OutOrStdout(), outputPath, artifact)
	if err != nil {
		return err
	}
	if where != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d cues written to %s\n", job.Document.Len(), where)
	}
	return nil
}

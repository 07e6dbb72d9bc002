package translate

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"captionflow/cmd/v2s/cmd/shared"
	"captionflow/internal/app"
	"captionflow/internal/app/delivery"
	"captionflow/internal/app/media"
	"captionflow/internal/app/progress"
	tr "captionflow/internal/app/translate"
	"captionflow/internal/app/util/files"
)

var (
	targetLanguage string
	contextPath    string
	style          string
	apiKey         string
	outputPath     string
	format         string
)

func init() {
	Cmd.Flags().StringVarP(&targetLanguage, "target", "t", "", "target language, e.g. English or en")
	Cmd.Flags().StringVarP(&contextPath, "context", "c", "", "media file the model may consult while translating (gemini only)")
	Cmd.Flags().StringVarP(&style, "style", "s", "", "free-form tone instructions")
	Cmd.Flags().StringVarP(&apiKey, "apiKey", "k", "", "translation credential, overrides the configured key")
	Cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file, stdout for srt when omitted")
	Cmd.Flags().StringVarP(&format, "format", "f", "", "srt or xlsx, guessed from --output")

	Cmd.MarkFlagRequired("target")
}

// Cmd represents the translate command
var Cmd = &cobra.Command{
	Use:   "translate <captions.srt>",
	Short: "Translate SRT captions while keeping their timing",
	Long: `Translate SRT captions while keeping their timing

- Cues are sent in batches; numbering and timestamps are never changed
- A structural change in the model output fails the whole translation`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outFormat, err := shared.FormatFor(format, outputPath)
		if err != nil {
			return err
		}
		doc, err := shared.ReadCaptions(args[0])
		if err != nil {
			return err
		}

		a, err := shared.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Logger.Sync()

		pm := progress.NewManager(progress.Config{Enabled: progress.ShouldShowProgress(false), Writer: os.Stderr})
		var bar *progress.Bar
		translator := app.NewTranslator(a.Settings, nil, a.Logger, tr.WithProgress(func(done, total int) {
			if bar == nil {
				bar = pm.CreateBar(total, "Translating", "batches")
			}
			bar.SetCurrent(done)
		}))

		credential := apiKey
		if credential == "" {
			credential = a.Settings.TranslationCredential()
		}
		req := tr.Request{
			Document:       doc,
			TargetLanguage: targetLanguage,
			Style:          style,
			Credential:     credential,
		}

		if contextPath != "" {
			ws, err := media.NewWorkspace(a.Settings.WorkDir)
			if err != nil {
				return err
			}
			defer ws.Close()
			ctxFile, err := stageContext(ws, contextPath)
			if err != nil {
				return err
			}
			req.Context = ctxFile
		}

		out, err := translator.Translate(cmd.Context(), req)
		if bar != nil {
			if err != nil {
				bar.Abort()
			}
			pm.Wait()
		}
		if err != nil {
			return err
		}

		title := files.TitleFromFilename(args[0]) + " " + targetLanguage
		artifact, err := delivery.Export(out, title, outFormat)
		if err != nil {
			return err
		}
		where, err := shared.WriteArtifact(cmd.OutOrStdout(), outputPath, artifact)
		if err != nil {
			return err
		}
		if where != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d cues translated to %s\n", out.Len(), where)
		}
		return nil
	},
}

// stageContext copies the context file into ws since the translator removes
// its input once done.
func stageContext(ws *media.Workspace, path string) (*tr.ContextFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open context file: %w", err)
	}
	defer f.Close()

	staged, err := ws.Save(f, filepath.Base(path), media.DefaultMaxDownloadBytes)
	if err != nil {
		return nil, err
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &tr.ContextFile{Path: staged, MIMEType: mimeType}, nil
}

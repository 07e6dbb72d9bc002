package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"captionflow/cmd/v2s/cmd/shared"
	"captionflow/internal/app/delivery"
	"captionflow/internal/app/util/files"
)

var (
	title      string
	outputPath string
	format     string
	persist    bool
)

func init() {
	Cmd.Flags().StringVarP(&title, "title", "n", "", "document title, defaults to the input file name")
	Cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file, stdout for srt when omitted")
	Cmd.Flags().StringVarP(&format, "format", "f", "", "srt or xlsx, guessed from --output")
	Cmd.Flags().BoolVar(&persist, "persist", false, "store the export in STORAGE_BACKEND and print its URL")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export <captions.srt>",
	Short: "Convert SRT captions to SRT or Excel",
	Long: `Convert SRT captions to SRT or Excel

- The Excel sheet has one row per cue: index, start, end, text
- With --persist the file goes to MinIO or S3 instead of the local disk`,
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
		if title == "" {
			title = files.TitleFromFilename(args[0])
		}
		artifact, err := delivery.Export(doc, title, outFormat)
		if err != nil {
			return err
		}

		if persist {
			a, err := shared.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Logger.Sync()

			ref, err := a.Persister.Persist(cmd.Context(), artifact)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", ref.Key, ref.URL)
			return nil
		}

		where, err := shared.WriteArtifact(cmd.OutOrStdout(), outputPath, artifact)
		if err != nil {
			return err
		}
		if where != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "export finished, exported file path: %v\n", where)
		}
		return nil
	},
}

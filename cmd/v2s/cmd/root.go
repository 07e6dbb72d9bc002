package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"captionflow/cmd/v2s/cmd/export"
	"captionflow/cmd/v2s/cmd/providers"
	"captionflow/cmd/v2s/cmd/serve"
	"captionflow/cmd/v2s/cmd/shared"
	"captionflow/cmd/v2s/cmd/transcribe"
	"captionflow/cmd/v2s/cmd/translate"
	"captionflow/cmd/v2s/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "v2s",
	Short: "Turn media into timed captions, translate them and export them",
	Long: `Turn media into timed captions, translate them and export them.
- Transcribe a local file, a media URL or a podcast/video page with any configured ASR provider
- Translate SRT captions while keeping every timestamp
- Export to SRT or Excel, optionally into MinIO or S3
- Or run the same operations as an HTTP service with 'v2s serve'`,
	TraverseChildren: true,
	SilenceUsage:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(translate.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(providers.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&shared.Verbose, "verbose", "V", false, "verbose output")
}

// Package shared holds the pieces every v2s subcommand needs: global flags,
// component wiring and caption file I/O.
package shared

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"captionflow/internal/app"
	"captionflow/internal/app/caption"
	"captionflow/internal/app/delivery"
	"captionflow/internal/app/logging"
	"captionflow/internal/config"
)

var Verbose bool

// Bootstrap loads the settings and wires the components.
func Bootstrap(ctx context.Context) (*app.App, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewCLILogger(Verbose)
	if err != nil {
		return nil, err
	}
	return app.InitializeApp(ctx, settings, logger)
}

// ReadCaptions parses an SRT file.
func ReadCaptions(path string) (*caption.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}
	doc, err := caption.ParseSRT(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// WriteArtifact writes artifact to output. An empty output sends SRT to
// stdout and writes other formats next to the working directory under the
// artifact's own filename. It returns where the data went.
func WriteArtifact(stdout io.Writer, output string, artifact *delivery.Artifact) (string, error) {
	if output == "" {
		if artifact.ContentType == delivery.ContentTypeSRT {
			_, err := stdout.Write(artifact.Data)
			return "", err
		}
		output = artifact.Filename
	}
	if output == "-" {
		_, err := stdout.Write(artifact.Data)
		return "", err
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(output, artifact.Data, 0644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return output, nil
}

// FormatFor picks the export format from an explicit flag, then the output
// file extension.
func FormatFor(flag, output string) (delivery.Format, error) {
	if flag == "" && output != "" && output != "-" {
		flag = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if flag != string(delivery.FormatXLSX) {
			flag = ""
		}
	}
	return delivery.ParseFormat(flag)
}

// Package delivery turns caption documents into downloadable artifacts and
// stores them in object storage.
package delivery

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tealeg/xlsx"

	"captionflow/internal/app/caption"
	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/util/files"
)

type Format string

const (
	FormatSRT  Format = "srt"
	FormatXLSX Format = "xlsx"
)

const (
	ContentTypeSRT  = "application/x-subrip"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat accepts "srt", "xlsx" and the empty string, which means srt.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatSRT:
		return FormatSRT, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", apperrors.InvalidField("format", fmt.Sprintf("unsupported format %q", s))
	}
}

// Artifact is an exported document ready to be sent or stored.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders doc in the given format. The filename is the sanitized
// title plus the format extension.
func Export(doc *caption.Document, title string, format Format) (*Artifact, error) {
	if doc == nil {
		return nil, apperrors.RequiredField("captions")
	}
	if err := doc.Validate(); err != nil {
		return nil, apperrors.InvalidField("captions", err.Error())
	}
	if format == "" {
		format = FormatSRT
	}

	name := files.SanitizeFilename(title)
	switch format {
	case FormatSRT:
		return &Artifact{
			Filename:    name + ".srt",
			ContentType: ContentTypeSRT,
			Data:        caption.FormatSRT(doc),
		}, nil
	case FormatXLSX:
		data, err := toExcel(doc)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			Filename:    name + ".xlsx",
			ContentType: ContentTypeXLSX,
			Data:        data,
		}, nil
	default:
		return nil, apperrors.InvalidField("format", fmt.Sprintf("unsupported format %q", format))
	}
}

func toExcel(doc *caption.Document) ([]byte, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Captions")
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create sheet")
	}

	header := sheet.AddRow()
	header.AddCell().Value = "Index"
	header.AddCell().Value = "Start"
	header.AddCell().Value = "End"
	header.AddCell().Value = "Text"

	for _, c := range doc.Cues {
		row := sheet.AddRow()
		row.AddCell().SetInt(c.Index)
		row.AddCell().Value = caption.FormatTimestamp(c.StartMs)
		row.AddCell().Value = caption.FormatTimestamp(c.EndMs)
		row.AddCell().Value = c.Text
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, apperrors.Wrap(err, "failed to write workbook")
	}
	return buf.Bytes(), nil
}

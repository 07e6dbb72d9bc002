package handlers

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"captionflow/internal/api/errors"
	"captionflow/internal/api/v1/services"
)

// formFile opens a multipart part. The caller closes the returned file.
func formFile(c *gin.Context, field string, required bool) (*services.UploadedFile, multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if !required {
			return nil, nil, nil
		}
		return nil, nil, errors.NewValidationError("Validation failed", map[string]string{field: "is required"})
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, errors.NewBadRequestError("Failed to read uploaded file")
	}
	return &services.UploadedFile{
		Reader:      f,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, f, nil
}

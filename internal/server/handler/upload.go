package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

var errMissingFile = errors.New("missing file")

// readUpload parses the multipart form and returns the named file's bytes.
func readUpload(c *gin.Context, field string, maxSize int64) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+(1<<20))
	if err := c.Request.ParseMultipartForm(maxSize); err != nil {
		return nil, "", fmt.Errorf("invalid multipart payload: %w", err)
	}

	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, "", errMissingFile
	}
	defer file.Close()

	content, err := readLimited(file, maxSize)
	if err != nil {
		return nil, "", err
	}
	return content, header.Filename, nil
}

func readLimited(file multipart.File, maxSize int64) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(content)) > maxSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", maxSize)
	}
	return content, nil
}

// readUploads returns every file sent under field. Each file is bounded by maxSize.
func readUploads(c *gin.Context, field string, maxSize, maxTotal int64) ([]namedUpload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxTotal+(1<<20))
	if err := c.Request.ParseMultipartForm(maxSize); err != nil {
		return nil, fmt.Errorf("invalid multipart payload: %w", err)
	}

	headers := c.Request.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, errMissingFile
	}

	uploads := make([]namedUpload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", header.Filename, err)
		}
		content, err := readLimited(file, maxSize)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", header.Filename, err)
		}
		uploads = append(uploads, namedUpload{name: header.Filename, content: content})
	}
	return uploads, nil
}

type namedUpload struct {
	name    string
	content []byte
}

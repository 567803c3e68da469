package extract

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wordflow/internal/ocr"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}

// DefaultMaxImageSize bounds a single uploaded image.
const DefaultMaxImageSize = 10 << 20

// Recognizer reads text from an image file on disk.
type Recognizer interface {
	RecognizeImage(ctx context.Context, imagePath string, opts ocr.Options) (ocr.Recognition, error)
}

// ImageProcessor runs OCR over uploaded images.
type ImageProcessor struct {
	log        processLog
	recognizer Recognizer
	language   string
	maxSize    int64
}

// NewImageProcessor builds an ImageProcessor. A maxSize of zero uses DefaultMaxImageSize.
func NewImageProcessor(recognizer Recognizer, language string, maxSize int64, logger *zap.Logger) *ImageProcessor {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &ImageProcessor{
		log:        newProcessLog(logger, "image"),
		recognizer: recognizer,
		language:   language,
		maxSize:    maxSize,
	}
}

// ValidateExtension accepts the common raster formats Tesseract reads.
func (p *ImageProcessor) ValidateExtension(filename string) error {
	return validateExtension(filename, imageExtensions)
}

// Process recognizes content using the processor's default language.
func (p *ImageProcessor) Process(ctx context.Context, content []byte, filename string) ProcessingResult {
	return p.ProcessWithLanguage(ctx, content, filename, "")
}

// ProcessWithLanguage recognizes content with an explicit Tesseract language code.
func (p *ImageProcessor) ProcessWithLanguage(ctx context.Context, content []byte, filename, language string) ProcessingResult {
	p.log.start(filename, len(content))

	if err := p.ValidateExtension(filename); err != nil {
		return failed(err.Error())
	}
	if len(content) == 0 {
		return failed("Empty image file")
	}
	if int64(len(content)) > p.maxSize {
		return failed(fmt.Sprintf("Image is too large (maximum %d bytes)", p.maxSize))
	}
	if language == "" {
		language = p.language
	}

	path, cleanup, err := ocr.SaveUploadedFile(bytes.NewReader(content), extensionOf(filename))
	if err != nil {
		p.log.failure(filename, "failed to stage image", err)
		return faulted("Failed to store uploaded image", err)
	}
	defer cleanup()

	started := time.Now()
	rec, err := p.recognizer.RecognizeImage(ctx, path, ocr.Options{Language: language})
	if err != nil {
		msg := "OCR processing failed: " + err.Error()
		p.log.failure(filename, msg, err)
		return faulted(msg, err)
	}
	if !hasContent(rec.Text) {
		p.log.failure(filename, msgNoContent, nil)
		return failed(msgNoContent)
	}

	elapsed := rec.ProcessingTime
	if elapsed == 0 {
		elapsed = time.Since(started)
	}

	p.log.success(filename, len(rec.Text))
	return succeeded(rec.Text, &FileInfo{
		Filename:       filename,
		Extension:      extensionOf(filename),
		Size:           int64(len(content)),
		Engine:         rec.Engine,
		Language:       rec.Language,
		Confidence:     rec.Confidence,
		ProcessingTime: elapsed,
	})
}

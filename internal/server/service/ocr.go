package service

import (
	"context"

	"wordflow/internal/analysis"
	"wordflow/internal/extract"
)

// ImageProcessor runs OCR over a single uploaded image.
type ImageProcessor interface {
	ProcessWithLanguage(ctx context.Context, content []byte, filename, language string) extract.ProcessingResult
}

// OCRMetadata describes how an image was read.
type OCRMetadata struct {
	Engine         string  `json:"engine"`
	Language       string  `json:"language"`
	Confidence     float64 `json:"confidence"`
	ProcessingTime float64 `json:"processing_time"`
	Filename       string  `json:"filename"`
	Size           int64   `json:"size"`
}

// AnalyzeImage OCRs an image and analyzes the recognized text.
func (s *AnalysisService) AnalyzeImage(ctx context.Context, content []byte, filename, language string) (Response, error) {
	if s.processors.Image == nil {
		return Response{}, errImageNotConfigured()
	}

	res := s.processors.Image.ProcessWithLanguage(ctx, content, filename, language)
	if err := resultError(res); err != nil {
		return Response{}, err
	}

	var tc analysis.TitleContext
	var meta *OCRMetadata
	if res.Info != nil {
		tc.Engine = res.Info.Engine
		meta = &OCRMetadata{
			Engine:         res.Info.Engine,
			Language:       res.Info.Language,
			Confidence:     res.Info.Confidence,
			ProcessingTime: res.Info.ProcessingTime.Seconds(),
			Filename:       res.Info.Filename,
			Size:           res.Info.Size,
		}
	}

	resp := s.respond(res.Text, analysis.KindImage, tc, 0)
	resp.OCR = meta
	return resp, nil
}

func errImageNotConfigured() error {
	return &CollaboratorError{Message: "Image OCR is not configured", Err: ErrCollaborator}
}

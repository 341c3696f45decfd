package analyzer

import (
	"context"

	"go.uber.org/zap"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

// Dispatcher routes a document to the analyzer for its format. Vision may be
// nil, in which case images and PDFs are rejected as unsupported.
type Dispatcher struct {
	vision Analyzer
	text   Analyzer
	sheet  Analyzer
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher with the local text and spreadsheet
// parsers and an optional vision analyzer.
func NewDispatcher(vision Analyzer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		vision: vision,
		text:   TextAnalyzer{},
		sheet:  SpreadsheetAnalyzer{},
		logger: logger.Named("analyzer"),
	}
}

// VisionEnabled reports whether image and PDF reports can be analyzed.
func (d *Dispatcher) VisionEnabled() bool {
	return d.vision != nil
}

func (d *Dispatcher) Analyze(ctx context.Context, doc Document) (lawn.SoilMeasurement, error) {
	if len(doc.Data) == 0 {
		return lawn.SoilMeasurement{}, parseFailure("report is empty", nil)
	}

	format := DetectFormat(doc)
	d.logger.Debug("Dispatching soil report",
		zap.String("name", doc.Name),
		zap.String("format", string(format)))

	switch format {
	case FormatImage, FormatPDF:
		if d.vision == nil {
			return lawn.SoilMeasurement{}, unsupported("no vision analyzer is configured for %s reports; upload a TXT, CSV or XLSX export or enter values manually", format)
		}
		return d.vision.Analyze(ctx, doc)
	case FormatText:
		return d.text.Analyze(ctx, doc)
	case FormatSpreadsheet:
		return d.sheet.Analyze(ctx, doc)
	}
	return lawn.SoilMeasurement{}, unsupported("unsupported file type %q; upload an image, PDF, TXT, CSV or XLSX file", doc.Name)
}

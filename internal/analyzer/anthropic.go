package analyzer

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

const DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicConfig configures AnthropicAnalyzer.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// AnthropicAnalyzer reads report images and PDFs with a Claude model.
type AnthropicAnalyzer struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicAnalyzer creates an AnthropicAnalyzer.
func NewAnthropicAnalyzer(cfg AnthropicConfig, logger *zap.Logger) (*AnthropicAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, NewError(ErrorTypeAuth, "Anthropic API key is not configured", false, nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicAnalyzer{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
		logger: logger.Named("analyzer.anthropic"),
	}, nil
}

func (a *AnthropicAnalyzer) Analyze(ctx context.Context, doc Document) (lawn.SoilMeasurement, error) {
	block, err := documentBlock(doc)
	if err != nil {
		return lawn.SoilMeasurement{}, err
	}
	text := prompt

	start := time.Now()
	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: visionMaxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				block,
				{Type: "text", Text: &text},
			}},
		},
	})
	if err != nil {
		a.logger.Error("Soil report analysis failed",
			zap.String("name", doc.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return lawn.SoilMeasurement{}, ClassifyError(err)
	}

	a.logger.Info("Soil report analyzed",
		zap.String("name", doc.Name),
		zap.Duration("elapsed", time.Since(start)))

	m, err := ParseResponse(responseText(resp))
	if err != nil {
		return lawn.SoilMeasurement{}, err
	}
	m.Source = "anthropic"
	return m, nil
}

func documentBlock(doc Document) (anthropic.MessageContent, error) {
	mediaType := doc.ResolvedMediaType()
	data := base64.StdEncoding.EncodeToString(doc.Data)

	switch DetectFormat(doc) {
	case FormatImage:
		if !visionMediaTypes[mediaType] {
			return anthropic.MessageContent{}, unsupported("image type %s is not supported", mediaType)
		}
		return anthropic.MessageContent{
			Type:   "image",
			Source: &anthropic.MessageContentSource{Type: "base64", MediaType: mediaType, Data: data},
		}, nil
	case FormatPDF:
		return anthropic.MessageContent{
			Type:   "document",
			Source: &anthropic.MessageContentSource{Type: "base64", MediaType: mediaTypePDF, Data: data},
		}, nil
	}
	return anthropic.MessageContent{}, unsupported("Anthropic analysis accepts report images and PDFs only, got %q", doc.Name)
}

func responseText(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}

package analyzer

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/i474232898/lawn-tracker/internal/lawn"
)

const (
	DefaultOpenAIModel = "gpt-4o"
	visionMaxTokens    = 1000
)

// OpenAIConfig configures OpenAIAnalyzer. BaseURL may point at any
// OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIAnalyzer reads report images with an OpenAI vision model.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIAnalyzer creates an OpenAIAnalyzer.
func NewOpenAIAnalyzer(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, NewError(ErrorTypeAuth, "OpenAI API key is not configured", false, nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &OpenAIAnalyzer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.Named("analyzer.openai"),
	}, nil
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, doc Document) (lawn.SoilMeasurement, error) {
	if DetectFormat(doc) != FormatImage {
		return lawn.SoilMeasurement{}, unsupported("OpenAI analysis accepts report images only, got %q", doc.Name)
	}
	mediaType := doc.ResolvedMediaType()
	if !visionMediaTypes[mediaType] {
		return lawn.SoilMeasurement{}, unsupported("image type %s is not supported", mediaType)
	}

	dataURI := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(doc.Data)

	a.logger.Debug("Analyzing soil report",
		zap.String("model", a.model),
		zap.String("name", doc.Name),
		zap.Int("bytes", len(doc.Data)))

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURI,
					Detail: openai.ImageURLDetailHigh,
				}},
			},
		}},
		MaxTokens:   visionMaxTokens,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		a.logger.Error("Soil report analysis failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return lawn.SoilMeasurement{}, ClassifyError(err)
	}
	if len(resp.Choices) == 0 {
		return lawn.SoilMeasurement{}, NewError(ErrorTypeProvider, "no choices in response", true, errors.New("empty completion"))
	}

	a.logger.Info("Soil report analyzed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	m, err := ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return lawn.SoilMeasurement{}, err
	}
	m.Source = "openai"
	return m, nil
}

package translator

import (
	"context"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService uses Cloud Translation. Credentials come from the service
// config or from Application Default Credentials.
type GoogleService struct{}

func NewGoogleService() *GoogleService {
	return &GoogleService{}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	target, err := language.Parse(req.TargetLang)
	if err != nil {
		result.Error = fmt.Sprintf("invalid target language: %v", err)
		return result, fmt.Errorf("invalid target language: %w", err)
	}

	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create client: %v", err)
		return result, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	// Design text is plain; HTML format would escape entities.
	topts := &translate.Options{Format: translate.Text}
	if req.SourceLang != "" && req.SourceLang != "auto" {
		source, err := language.Parse(req.SourceLang)
		if err != nil {
			result.Error = fmt.Sprintf("invalid source language: %v", err)
			return result, fmt.Errorf("invalid source language: %w", err)
		}
		topts.Source = source
	}

	translations, err := client.Translate(ctx, []string{req.Text}, target, topts)
	if err != nil {
		result.Error = fmt.Sprintf("translation failed: %v", err)
		return result, fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		result.Error = "no translation returned"
		return result, fmt.Errorf("no translation returned")
	}

	result.TranslatedText = translations[0].Text
	result.DetectedSource = translations[0].Source.String()
	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}

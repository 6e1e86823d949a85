package translator

import (
	"context"
	"time"
)

type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID   string        `mapstructure:"project_id" json:"project_id"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	DetectedSource string            `json:"detected_source,omitempty"`
	Metadata       map[string]string `json:"metadata"`
	Latency        time.Duration     `json:"latency"`
	Error          string            `json:"error,omitempty"`
}

// TranslationService translates one text at a time.
type TranslationService interface {
	Name() string
	Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
}

package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DeepLEndpoint is the default DeepL translate URL.
const DeepLEndpoint = "https://api.deepl.com/v2/translate"

// deeplResponse is the body DeepL returns and the relay passes through.
type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// DeepLService calls DeepL directly with its own key.
type DeepLService struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewDeepLService(apiKey, endpoint string) *DeepLService {
	if endpoint == "" {
		endpoint = DeepLEndpoint
	}
	return &DeepLService{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *DeepLService) Name() string {
	return "deepl"
}

func (s *DeepLService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	apiKey := s.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		result.Error = "DeepL API key required"
		return result, fmt.Errorf("DeepL API key required")
	}

	target, err := DeepLLang(req.TargetLang)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	form := url.Values{}
	form.Set("auth_key", apiKey)
	form.Set("text", req.Text)
	form.Set("target_lang", target)
	if req.SourceLang != "" && req.SourceLang != "auto" {
		if source, err := DeepLLang(req.SourceLang); err == nil {
			form.Set("source_lang", strings.SplitN(source, "-", 2)[0])
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		result.Error = fmt.Sprintf("API returned status %d: %s", resp.StatusCode, string(body))
		return result, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := decodeDeepL(resp.Body, result); err != nil {
		return result, err
	}
	return result, nil
}

func (s *DeepLService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("DeepL API key not configured")
	}
	return nil
}

func decodeDeepL(r io.Reader, result *ServiceResult) error {
	var body deeplResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		result.Error = fmt.Sprintf("failed to decode response: %v", err)
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(body.Translations) == 0 {
		result.Error = "no translation returned"
		return fmt.Errorf("no translation returned")
	}
	result.TranslatedText = body.Translations[0].Text
	result.DetectedSource = body.Translations[0].DetectedSourceLanguage
	return nil
}

// DeepLLang turns a BCP 47 code into DeepL's upper-case form, keeping the
// region when one was given ("en-gb" becomes "EN-GB", "fr" becomes "FR").
func DeepLLang(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", code, err)
	}
	base, _ := tag.Base()
	out := strings.ToUpper(base.String())
	if region, conf := tag.Region(); conf == language.Exact {
		out += "-" + strings.ToUpper(region.String())
	}
	return out, nil
}

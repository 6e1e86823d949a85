package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// MyMemoryEndpoint is the public MyMemory lookup URL.
const MyMemoryEndpoint = "https://api.mymemory.translated.net/get"

// MyMemoryService uses the free MyMemory API. No key is needed; an email
// raises the daily quota.
type MyMemoryService struct {
	email    string
	endpoint string
	client   *http.Client
}

func NewMyMemoryService(email, endpoint string) *MyMemoryService {
	if endpoint == "" {
		endpoint = MyMemoryEndpoint
	}
	return &MyMemoryService{
		email:    email,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	// MyMemory cannot detect the source; English is the usual design language.
	source := req.SourceLang
	if source == "" || source == "auto" {
		source = "en"
	}
	pair, err := myMemoryPair(source, req.TargetLang)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	q := url.Values{}
	q.Set("q", req.Text)
	q.Set("langpair", pair)
	if s.email != "" {
		q.Set("de", s.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, err
	}
	defer resp.Body.Close()

	var body struct {
		ResponseData struct {
			TranslatedText string  `json:"translatedText"`
			Match          float64 `json:"match"`
		} `json:"responseData"`
		ResponseStatus  json.Number `json:"responseStatus"`
		ResponseDetails string      `json:"responseDetails"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		result.Error = fmt.Sprintf("failed to decode response: %v", err)
		return result, err
	}

	if body.ResponseStatus.String() != "200" {
		result.Error = fmt.Sprintf("API error: %s (%s)", body.ResponseDetails, body.ResponseStatus)
		return result, fmt.Errorf("API error: %s", body.ResponseDetails)
	}

	result.TranslatedText = body.ResponseData.TranslatedText
	result.Metadata = map[string]string{"match": fmt.Sprintf("%.2f", body.ResponseData.Match)}
	return result, nil
}

func (s *MyMemoryService) IsAvailable(ctx context.Context) error {
	return nil
}

// myMemoryPair builds the "src|dst" pair MyMemory expects, keeping regions.
func myMemoryPair(source, target string) (string, error) {
	codes := make([]string, 0, 2)
	for _, code := range []string{source, target} {
		tag, err := language.Parse(code)
		if err != nil {
			return "", fmt.Errorf("invalid language %q: %w", code, err)
		}
		base, _ := tag.Base()
		out := base.String()
		if region, conf := tag.Region(); conf == language.Exact {
			out += "-" + strings.ToUpper(region.String())
		}
		codes = append(codes, out)
	}
	return codes[0] + "|" + codes[1], nil
}

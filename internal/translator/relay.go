package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RelayService sends text through a figtrans relay, which holds the
// provider credential.
type RelayService struct {
	baseURL string
	client  *http.Client
}

func NewRelayService(baseURL string) *RelayService {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &RelayService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *RelayService) Name() string {
	return "relay"
}

func (s *RelayService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	target, err := DeepLLang(req.TargetLang)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	payload, err := json.Marshal(map[string]string{
		"text":        req.Text,
		"target_lang": target,
	})
	if err != nil {
		result.Error = fmt.Sprintf("failed to marshal request: %v", err)
		return result, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/translate", bytes.NewReader(payload))
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var relayErr struct {
			Error string `json:"error"`
		}
		msg := string(body)
		if json.Unmarshal(body, &relayErr) == nil && relayErr.Error != "" {
			msg = relayErr.Error
		}
		result.Error = fmt.Sprintf("relay returned status %d: %s", resp.StatusCode, msg)
		return result, fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	if err := decodeDeepL(resp.Body, result); err != nil {
		return result, err
	}
	return result, nil
}

// IsAvailable checks the relay health endpoint.
func (s *RelayService) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay not reachable: %w", err)
	}
	defer resp.Body.Close()

	var health struct {
		Status    string `json:"status"`
		HasAPIKey bool   `json:"hasApiKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("relay status %q", health.Status)
	}
	if !health.HasAPIKey {
		return fmt.Errorf("relay has no API key configured")
	}
	return nil
}

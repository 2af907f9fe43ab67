package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"whisperbox/internal/apperrors"
)

// SuggestionSeparator delimits candidate messages in a completion.
const SuggestionSeparator = "||"

// DefaultSuggestions is returned when the completion provider is unreachable.
const DefaultSuggestions = "What's your favorite movie?||Do you have any pets?||What's your dream job?"

const defaultSuggestionPrompt = "Create a list of three open-ended and engaging questions formatted as a single string. " +
	"Each question should be separated by '||'. These questions are for an anonymous social messaging platform " +
	"and should be suitable for a diverse audience. Avoid personal or sensitive topics, focusing instead on " +
	"universal themes that encourage friendly interaction."

// SuggestionConfig holds the completion-provider connection details.
type SuggestionConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// SuggestionService forwards prompts to an OpenAI-compatible chat-completion
// endpoint and returns '||'-delimited candidate messages. It holds no state
// beyond the HTTP client.
type SuggestionService struct {
	cfg    SuggestionConfig
	client *http.Client
}

// NewSuggestionService creates a new SuggestionService.
func NewSuggestionService(cfg SuggestionConfig) *SuggestionService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SuggestionService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Suggest asks the provider for candidate messages. An empty seed falls back
// to the standard prompt. The returned string is '||'-delimited.
func (s *SuggestionService) Suggest(ctx context.Context, seed string) (string, error) {
	prompt := defaultSuggestionPrompt
	if strings.TrimSpace(seed) != "" {
		prompt = fmt.Sprintf("%s Base the questions loosely on this theme: %s", defaultSuggestionPrompt, seed)
	}

	payload := chatRequest{
		Model:       s.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.8,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, "encode_failed", "failed to encode provider request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.ErrProviderUnavailable(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", apperrors.ErrProviderTimeout(err)
		}
		return "", apperrors.ErrProviderUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperrors.ErrProviderUnavailable(fmt.Errorf("provider returned %d: %s", resp.StatusCode, raw))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.ErrProviderUnavailable(fmt.Errorf("decode provider response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.ErrProviderUnavailable(errors.New("provider returned no choices"))
	}

	completion := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if completion == "" {
		return "", apperrors.ErrProviderUnavailable(errors.New("provider returned empty completion"))
	}
	return completion, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"mock-interview/internal/config"
	"mock-interview/internal/metrics"
)

const defaultBaseURL = "https://api.openai.com/v1"

type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

type OpenAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIResponse struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Choices []Choice  `json:"choices"`
	Usage   Usage     `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// NewOpenAIClient создает клиент chat completions по настройкам
func NewOpenAIClient(cfg config.OpenAIConfig, logger *zap.Logger, m *metrics.Metrics) *OpenAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &OpenAIClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
		metrics:     m,
	}
}

// Complete отправляет диалог и возвращает текст первого ответа
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	content, err := c.complete(ctx, messages)
	c.metrics.IncrementAPICall(err == nil)
	if err != nil {
		c.logger.Error("ошибка запроса к OpenAI", zap.String("model", c.model), zap.Error(err))
		return "", err
	}
	return content, nil
}

// CompleteJSON отправляет системную инструкцию и запрос, ожидая JSON в ответе.
// Markdown-обрамление ответа удаляется.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]Message, 0, 2)
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	content, err := c.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	return CleanJSONResponse(content), nil
}

func (c *OpenAIClient) complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := OpenAIRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var openAIResp OpenAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("HTTP ошибка %d: %s", resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	if openAIResp.Error != nil {
		return "", fmt.Errorf("OpenAI API ошибка: %s", openAIResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP ошибка %d: %s", resp.StatusCode, string(body))
	}
	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("пустой ответ от OpenAI")
	}

	c.logger.Debug("ответ OpenAI получен",
		zap.String("model", openAIResp.Model),
		zap.Int("total_tokens", openAIResp.Usage.TotalTokens))

	return openAIResp.Choices[0].Message.Content, nil
}

// CleanJSONResponse удаляет markdown форматирование из ответа
func CleanJSONResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	return strings.TrimSpace(response)
}

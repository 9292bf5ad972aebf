package interviewer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mock-interview/internal/domain"
)

// Client запрашивает вопросы у HTTP API сервиса
type Client struct {
	baseURL string
	client  *http.Client
}

// GenerateRequest - тело запроса вопросов
type GenerateRequest struct {
	Role      string `json:"role"`
	TechStack string `json:"techStack"`
	Count     int    `json:"count"`
}

// GenerateResponse - ответ со списком вопросов
type GenerateResponse struct {
	Questions []string `json:"questions"`
}

// NewClient создает клиент. httpClient может быть nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// Questions выполняет POST /api/interview/generate
func (c *Client) Questions(ctx context.Context, setup domain.Setup) ([]string, error) {
	body, err := json.Marshal(GenerateRequest{
		Role:      setup.Role,
		TechStack: setup.TechStack,
		Count:     setup.Count,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/interview/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("HTTP ошибка %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	return result.Questions, nil
}

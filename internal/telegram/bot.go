package telegram

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

	"go.uber.org/zap"
)

const defaultAPIURL = "https://api.telegram.org"

// New создает новый Telegram бот. apiURL позволяет указать свой Bot API сервер.
func New(token, apiURL string, pollTimeout int, logger *zap.Logger) *Bot {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		baseURL:     fmt.Sprintf("%s/bot%s", strings.TrimRight(apiURL, "/"), token),
		pollTimeout: pollTimeout,
		client:      &http.Client{Timeout: time.Duration(pollTimeout+10) * time.Second},
		logger:      logger,
	}
}

// GetUpdates получает обновления от Telegram
func (b *Bot) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	url := fmt.Sprintf("%s/getUpdates?offset=%d&timeout=%d", b.baseURL, offset, b.pollTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса getUpdates: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса getUpdates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var response GetUpdatesResponse
	err = json.Unmarshal(body, &response)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга JSON: %w", err)
	}

	if !response.OK {
		return nil, fmt.Errorf("Telegram API вернул ошибку: %s", response.Description)
	}

	return response.Result, nil
}

// SendMessage отправляет сообщение пользователю
func (b *Bot) SendMessage(chatID int64, text string) error {
	request := SendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	url := fmt.Sprintf("%s/sendMessage", b.baseURL)
	resp, err := b.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("ошибка отправки сообщения: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var response SendMessageResponse
	err = json.Unmarshal(body, &response)
	if err != nil {
		return fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	if !response.OK {
		return fmt.Errorf("Telegram API вернул ошибку при отправке сообщения: %s", response.Description)
	}

	return nil
}

// StartPolling получает обновления до отмены контекста
func (b *Bot) StartPolling(ctx context.Context, handler func(context.Context, Update)) error {
	offset := 0

	for {
		updates, err := b.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			b.logger.Warn("ошибка получения обновлений", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			go handler(ctx, update)
		}
	}
}

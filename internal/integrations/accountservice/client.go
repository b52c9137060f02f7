package accountservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с AccountService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента AccountService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetAccount получает аккаунт с адресами и устаревшим тарифом
func (c *Client) GetAccount(ctx context.Context, accountID int64) (*Account, error) {
	var account Account
	url := fmt.Sprintf("%s/internal/accounts/%d", c.baseURL, accountID)
	if err := c.getJSON(ctx, url, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListSubscriptions получает подписки аккаунта
func (c *Client) ListSubscriptions(ctx context.Context, accountID int64) ([]Subscription, error) {
	subs := make([]Subscription, 0)
	url := fmt.Sprintf("%s/internal/accounts/%d/subscriptions", c.baseURL, accountID)
	if err := c.getJSON(ctx, url, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// IsBlacklisted проверяет, заблокирован ли аккаунт для бронирования
func (c *Client) IsBlacklisted(ctx context.Context, accountID int64) (bool, error) {
	var resp blacklistResponse
	url := fmt.Sprintf("%s/internal/accounts/%d/blacklist", c.baseURL, accountID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return false, err
	}
	if resp.Blacklisted {
		c.log.Info("Account %d is blacklisted", accountID)
	}
	return resp.Blacklisted, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("AccountService request failed: GET %s: %v", url, err)
		return fmt.Errorf("%w: failed to execute request: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch {
	case resp.StatusCode == http.StatusOK:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusNotFound:
		return ErrAccountNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("AccountService returned %d for GET %s: %s", resp.StatusCode, url, string(body))
		return fmt.Errorf("%w: status code %d", ErrServiceUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}

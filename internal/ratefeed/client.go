// Package ratefeed содержит HTTP-клиент внешнего прайс-фида.
// Фид отдаёт долларовые курсы по списку идентификаторов активов:
// GET /prices?ids=bitcoin,ethereum -> {"bitcoin":{"usd":65000}, ...}.
// Отсутствие ключа в ответе означает "курса нет" — клиент это не считает
// ошибкой, решение принимает кеш курсов.
package ratefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client — клиент прайс-фида поверх стандартного http.Client.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент прайс-фида с таймаутом запроса.
func NewClient(apiURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type priceEntry struct {
	USD float64 `json:"usd"`
}

// FetchRates запрашивает курсы для переданных идентификаторов фида.
// Возвращает только положительные курсы; активы без ключа в ответе
// в результат не попадают.
func (c *Client) FetchRates(ctx context.Context, feedIDs []string) (map[string]float64, error) {
	const op = "ratefeed.FetchRates"

	reqURL := fmt.Sprintf("%s/prices?ids=%s", c.apiURL, url.QueryEscape(strings.Join(feedIDs, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var payload map[string]priceEntry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rates := make(map[string]float64, len(payload))
	for id, entry := range payload {
		if entry.USD > 0 {
			rates[id] = entry.USD
		}
	}
	return rates, nil
}

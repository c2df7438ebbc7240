package addresspool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RemoteProvider запрашивает адреса у внешнего сервиса выдачи:
// GET /next-<asset>[-<network>]-address -> {"address": string | null}.
// Пустой или null адрес трактуется как исчерпание пула. Аренду ведёт
// внешний сервис, поэтому Release здесь ничего не делает.
type RemoteProvider struct {
	apiURL     string
	httpClient *http.Client
}

// NewRemote создаёт провайдер поверх внешнего сервиса выдачи адресов.
func NewRemote(apiURL string, timeout time.Duration) *RemoteProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteProvider{
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Acquire запрашивает следующий адрес у внешнего сервиса.
func (p *RemoteProvider) Acquire(ctx context.Context, asset, network string) (string, error) {
	const op = "addresspool.RemoteProvider.Acquire"

	path := fmt.Sprintf("/next-%s-address", asset)
	if network != "" {
		path = fmt.Sprintf("/next-%s-%s-address", asset, network)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var payload struct {
		Address *string `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if payload.Address == nil || *payload.Address == "" {
		return "", fmt.Errorf("%s: %w", op, ErrPoolExhausted)
	}
	return *payload.Address, nil
}

// Release ничего не делает: внешний сервис сам управляет выдачей.
func (p *RemoteProvider) Release(_ context.Context, _, _, _ string) error {
	return nil
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"workpro/internal/app/client/config"
	"workpro/internal/domain/conflict"
	"workpro/internal/domain/ledger"

	"golang.org/x/exp/slog"
)

var ErrUnauthorized = errors.New("требуется токен доступа")

// APIError - problem+json ответ сервера
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("сервер вернул %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("сервер вернул %d: %s", e.Status, e.Title)
}

type httpClient struct {
	client    *http.Client
	config    *config.Config
	log       *slog.Logger
	baseURL   string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &httpClient{
		client:    client,
		config:    cfg,
		log:       log,
		baseURL:   cfg.BaseURL(),
		userAgent: "Workpro-CLI/" + cfg.AppVersion,
	}
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

// SubmitActions отправляет пакет действий; сервер возвращает исход по каждому
func (h *httpClient) SubmitActions(ctx context.Context, actions []ledger.ActionInput) ([]ledger.ActionResult, error) {
	body := struct {
		DeviceID string               `json:"deviceId"`
		Actions  []ledger.ActionInput `json:"actions"`
	}{DeviceID: h.config.DeviceID, Actions: actions}

	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/sync/actions", body)
	if err != nil {
		return nil, err
	}

	var out struct {
		Results []ledger.ActionResult `json:"results"`
	}
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// ListConflicts возвращает конфликты арендатора; status пустой - все
func (h *httpClient) ListConflicts(ctx context.Context, status string) ([]conflict.SyncConflict, error) {
	path := "/api/v1/sync/conflicts"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}

	resp, err := h.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Conflicts []conflict.SyncConflict `json:"conflicts"`
	}
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	return out.Conflicts, nil
}

// ResolvedConflict - ответ на разрешение конфликта
type ResolvedConflict struct {
	conflict.SyncConflict
	AlreadyResolved bool `json:"alreadyResolved"`
}

func (h *httpClient) ResolveConflict(ctx context.Context, id, resolution, notes string) (*ResolvedConflict, error) {
	body := struct {
		Resolution string  `json:"resolution"`
		Notes      *string `json:"notes,omitempty"`
	}{Resolution: resolution}
	if notes != "" {
		body.Notes = &notes
	}

	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/sync/conflicts/"+url.PathEscape(id)+"/resolve", body)
	if err != nil {
		return nil, err
	}

	var out ResolvedConflict
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.Token)
	}
	req.Header.Set("X-Device-ID", h.config.DeviceID)
	if h.config.Platform != "" {
		req.Header.Set("X-Device-Platform", h.config.Platform)
	}
	if h.config.AppVersion != "" {
		req.Header.Set("X-App-Version", h.config.AppVersion)
	}

	h.log.Debug("http request", "method", method, "path", path)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("сервер недоступен: %w", err)
	}
	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if len(data) > 0 {
			_ = json.Unmarshal(data, apiErr)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("ошибка разбора ответа: %w", err)
	}
	return nil
}

// Package api реализует единую точку, через которую клиент обращается к удалённому API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"trainsys/client/internal/logging"
	"trainsys/client/internal/notify"
)

// Тексты ошибок на случай, когда сервер не прислал своё сообщение.
const (
	MessageRequestFailed = "Запрос не выполнен"
	MessageBadResponse   = "Не удалось разобрать ответ сервера"
)

// Notifier принимает уведомления об ошибках конвейера.
type Notifier interface {
	Show(text string, severity notify.Severity)
}

// TokenSource отдаёт токен текущей сессии.
type TokenSource interface {
	Token() string
}

// Request описывает один вызов API. Не изменяется после создания и не повторяется.
type Request struct {
	Endpoint string
	Method   string
	Body     any
	Query    map[string]string
}

// Payload содержит тело успешного ответа.
type Payload json.RawMessage

// Decode разбирает тело в out.
func (p Payload) Decode(out any) error {
	return json.Unmarshal(p, out)
}

// Client инкапсулирует HTTP-взаимодействия с сервером продажи билетов.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	notifier   Notifier
	tokens     TokenSource
	newID      func() string
}

// Options позволяет переопределить зависимости клиента.
type Options struct {
	HTTPClient *http.Client
	Logger     *logging.Logger
	Notifier   Notifier
	Tokens     TokenSource
	Timeout    time.Duration
}

// New создаёт клиент API. Конвейер сам не ограничивает время запросов:
// таймаут задаётся только явно через Options.Timeout.
func New(baseURL string, opts Options) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse baseURL: %w", err)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     opts.Logger,
		notifier:   opts.Notifier,
		tokens:     opts.Tokens,
		newID:      uuid.NewString,
	}, nil
}

// Execute выполняет запрос и классифицирует результат. Любая ошибка
// сначала уходит в Notifier с уровнем error, затем возвращается вызывающему.
func (c *Client) Execute(ctx context.Context, req Request) (Payload, error) {
	requestID := c.newID()
	log := c.logger.WithFields(logging.Fields{
		"request_id": requestID,
		"method":     req.Method,
		"endpoint":   req.Endpoint,
	})
	start := time.Now()

	httpReq, err := c.build(ctx, req, requestID)
	if err != nil {
		return nil, c.fail(log, &Error{Op: req.Endpoint, Kind: KindNetwork, Message: err.Error(), Err: err})
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.fail(log, &Error{Op: req.Endpoint, Kind: KindNetwork, Message: err.Error(), Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(log, &Error{Op: req.Endpoint, Kind: KindNetwork, Status: resp.StatusCode, Message: err.Error(), Err: err})
	}
	if !gjson.ValidBytes(body) {
		return nil, c.fail(log, &Error{
			Op:      req.Endpoint,
			Kind:    KindParse,
			Status:  resp.StatusCode,
			Message: MessageBadResponse,
			Err:     fmt.Errorf("invalid JSON body (%d bytes)", len(body)),
		})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(log, &Error{
			Op:      req.Endpoint,
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: serverMessage(body),
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		})
	}
	if log != nil {
		log.WithFields(logging.Fields{"status": resp.StatusCode, "duration": time.Since(start)}).Debugf("request completed")
	}
	return Payload(body), nil
}

// Call выполняет запрос и разбирает тело в out (если out не nil).
// Несовпадение формы ответа считается ошибкой разбора и тоже уведомляется.
func (c *Client) Call(ctx context.Context, req Request, out any) error {
	payload, err := c.Execute(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := payload.Decode(out); err != nil {
		return c.fail(c.logger, &Error{Op: req.Endpoint, Kind: KindParse, Status: http.StatusOK, Message: MessageBadResponse, Err: err})
	}
	return nil
}

func (c *Client) build(ctx context.Context, req Request, requestID string) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(req.Body); err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = buf
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolve(req), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}

func (c *Client) resolve(req Request) string {
	full := c.baseURL + req.Endpoint
	if len(req.Query) == 0 {
		return full
	}
	keys := make([]string, 0, len(req.Query))
	for key := range req.Query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, key := range keys {
		values.Set(key, req.Query[key])
	}
	sep := "?"
	if strings.Contains(full, "?") {
		sep = "&"
	}
	return full + sep + values.Encode()
}

func (c *Client) fail(log *logging.Logger, apiErr *Error) error {
	log.Errorf("request failed: kind=%s status=%d: %v", apiErr.Kind, apiErr.Status, apiErr.Err)
	if c.notifier != nil {
		c.notifier.Show(apiErr.Message, notify.SeverityError)
	}
	return apiErr
}

func serverMessage(body []byte) string {
	msg := gjson.GetBytes(body, "message")
	if msg.Type == gjson.String && strings.TrimSpace(msg.String()) != "" {
		return msg.String()
	}
	return MessageRequestFailed
}

// Пакет sparql — HTTP-клиент SPARQL endpoint (SPARQL 1.1 Protocol) и
// построитель текста запросов с централизованным экранированием.
// Поддерживает TLS с кастомным CA (BBCDR_SPARQL_CA_CERT_PATH) и проброс
// заголовков mu-session-id / mu-call-id вызывающего запроса.
package sparql

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Заголовки mu.semte.ch, пробрасываемые в хранилище.
const (
	HeaderSessionID = "mu-session-id"
	HeaderCallID    = "mu-call-id"
)

// Типы содержимого SPARQL 1.1 Protocol.
const (
	contentTypeForm = "application/x-www-form-urlencoded"
	acceptResults   = "application/sparql-results+json"
)

// Prometheus-метрики обращений к хранилищу.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bbcdr_sparql_requests_total",
		Help: "Общее количество запросов к SPARQL endpoint (по операции и результату).",
	}, []string{"operation", "result"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bbcdr_sparql_request_duration_seconds",
		Help:    "Длительность запросов к SPARQL endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// Client — HTTP-клиент SPARQL endpoint.
// Реализует repository.Store.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *slog.Logger
}

// New создаёт клиента SPARQL endpoint.
// endpoint — URL endpoint (например, http://database:8890/sparql).
// caCertPath — путь к CA-сертификату для TLS (пустая строка: стандартный пул).
// timeout — таймаут HTTP-запросов (BBCDR_SPARQL_TIMEOUT).
func New(endpoint, caCertPath string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("некорректный URL SPARQL endpoint %q: %w", endpoint, err)
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
	}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата SPARQL endpoint: %w", err)
		}
		transport.TLSClientConfig = tlsConfig
		logger.Info("CA-сертификат SPARQL endpoint добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		endpoint: endpoint,
		logger:   logger.With(slog.String("component", "sparql_client")),
	}, nil
}

// Query выполняет SELECT или ASK и возвращает разобранный результат.
func (c *Client) Query(ctx context.Context, query string) (*Results, error) {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues("query").Observe(time.Since(start).Seconds())
	}()

	resp, err := c.post(ctx, url.Values{"query": {query}})
	if err != nil {
		requestsTotal.WithLabelValues("query", "error").Inc()
		return nil, fmt.Errorf("запрос к SPARQL endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		requestsTotal.WithLabelValues("query", "error").Inc()
		return nil, statusError(resp)
	}

	var results Results
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		requestsTotal.WithLabelValues("query", "error").Inc()
		return nil, fmt.Errorf("декодирование sparql-results+json: %w", err)
	}

	requestsTotal.WithLabelValues("query", "ok").Inc()
	c.logger.Debug("SPARQL query выполнен",
		slog.Int("rows", len(results.Results.Bindings)),
		slog.Duration("duration", time.Since(start)),
	)
	return &results, nil
}

// Update выполняет SPARQL Update (INSERT DATA, DELETE/INSERT/WHERE).
func (c *Client) Update(ctx context.Context, update string) error {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues("update").Observe(time.Since(start).Seconds())
	}()

	resp, err := c.post(ctx, url.Values{"update": {update}})
	if err != nil {
		requestsTotal.WithLabelValues("update", "error").Inc()
		return fmt.Errorf("update к SPARQL endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		requestsTotal.WithLabelValues("update", "error").Inc()
		return statusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	requestsTotal.WithLabelValues("update", "ok").Inc()
	c.logger.Debug("SPARQL update выполнен", slog.Duration("duration", time.Since(start)))
	return nil
}

// post отправляет форму на endpoint с заголовками mu.semte.ch из контекста.
func (c *Client) post(ctx context.Context, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeForm)
	req.Header.Set("Accept", acceptResults)

	if h, ok := muHeadersFromContext(ctx); ok {
		if h.SessionID != "" {
			req.Header.Set(HeaderSessionID, h.SessionID)
		}
		if h.CallID != "" {
			req.Header.Set(HeaderCallID, h.CallID)
		}
	}

	return c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации MU_SPARQL_ENDPOINT
}

// statusError формирует ошибку по неуспешному ответу endpoint.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("SPARQL endpoint вернул статус %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

const statusFail = "fail"

// CheckReady проверяет доступность endpoint запросом ASK {}.
// Реализует handlers.ReadinessChecker.
func (c *Client) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	results, err := c.Query(ctx, "ASK {}")
	if err != nil {
		return statusFail, fmt.Sprintf("SPARQL endpoint недоступен: %v", err)
	}
	if results.Boolean == nil {
		return "degraded", "SPARQL endpoint: ответ ASK без поля boolean"
	}
	return "ok", "SPARQL endpoint доступен"
}

// --- Заголовки вызывающего запроса ---

// MuHeaders — заголовки mu.semte.ch входящего запроса.
type MuHeaders struct {
	SessionID string
	CallID    string
}

type muHeadersKey struct{}

// WithMuHeaders сохраняет заголовки входящего запроса в контексте,
// чтобы клиент передал их хранилищу.
func WithMuHeaders(ctx context.Context, h MuHeaders) context.Context {
	return context.WithValue(ctx, muHeadersKey{}, h)
}

func muHeadersFromContext(ctx context.Context) (MuHeaders, bool) {
	h, ok := ctx.Value(muHeadersKey{}).(MuHeaders)
	return h, ok
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA-сертификатом.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}

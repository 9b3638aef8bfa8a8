package capability

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// FamilyHTTP — семейство HTTP запросов.
	FamilyHTTP = "HTTP"

	defaultHTTPTimeout = 30 * time.Second
	maxResponseBody    = 10 * 1024 * 1024 // 10 MB
)

// Ключи параметров HTTP.
const (
	paramURL             = "url"
	paramHeaders         = "headers"
	paramQuery           = "query"
	paramBody            = "body"
	paramFollowRedirects = "follow_redirects"
	paramValidateSSL     = "validate_ssl"
	paramTimeoutSec      = "timeout_sec"
)

// httpMethods — методы, регистрируемые в семействе HTTP.
var httpMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// HTTP — семейство HTTP запросов.
//
// Параметры:
//
//	{
//	    "url": "https://api.example.com/items",
//	    "headers": {"Authorization": "Bearer {%TOKEN%}"},
//	    "query": {"limit": "10"},
//	    "body": {"name": "{bucket.Location}"},
//	    "follow_redirects": true,
//	    "validate_ssl": true,
//	    "timeout_sec": 30
//	}
//
// Результат:
//
//	{
//	    "status_code": 200,
//	    "headers": {"Content-Type": "application/json"},
//	    "body": {...}  // JSON или строка
//	}
//
// Статус >= 400 — ошибка вызова (HTTPError).
type HTTP struct {
	transport http.RoundTripper
	maxBody   int64
}

// NewHTTP создаёт семейство HTTP.
// Пустой transport — транспорт собирается под каждый запрос.
func NewHTTP(transport http.RoundTripper) *HTTP {
	return &HTTP{transport: transport, maxBody: maxResponseBody}
}

// Register регистрирует методы семейства.
func (h *HTTP) Register(r *Registry) {
	for _, method := range httpMethods {
		r.Register(FamilyHTTP, method, h.Method(method))
	}
}

// Method возвращает Func для HTTP метода.
func (h *HTTP) Method(method string) Func {
	return func(ctx context.Context, params map[string]any) (map[string]any, error) {
		return h.Do(ctx, method, params)
	}
}

// httpRequest — разобранные параметры запроса.
type httpRequest struct {
	Method          string
	URL             string
	Headers         map[string]string
	Query           map[string]string
	Body            []byte
	JSONBody        bool
	FollowRedirects bool
	ValidateSSL     bool
	Timeout         time.Duration
}

// Do выполняет запрос.
func (h *HTTP) Do(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	req, err := parseHTTPParams(method, params)
	if err != nil {
		return nil, err
	}

	httpReq, err := buildRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client(req).Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return parseResponse(resp, h.maxBody)
}

func parseHTTPParams(method string, params map[string]any) (*httpRequest, error) {
	req := &httpRequest{
		Method:          strings.ToUpper(method),
		URL:             String(params, paramURL),
		Headers:         StringMap(params, paramHeaders),
		Query:           StringMap(params, paramQuery),
		FollowRedirects: Bool(params, paramFollowRedirects, true),
		ValidateSSL:     Bool(params, paramValidateSSL, true),
		Timeout:         defaultHTTPTimeout,
	}

	if req.URL == "" {
		return nil, invalidParams(FamilyHTTP, "url is required")
	}
	if sec := Int(params, paramTimeoutSec); sec > 0 {
		req.Timeout = time.Duration(sec) * time.Second
	}
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}

	switch params[paramBody].(type) {
	case nil, string, []byte:
	default:
		req.JSONBody = true
	}
	body, ok, err := Bytes(params, paramBody)
	if err != nil {
		return nil, invalidParams(FamilyHTTP, "%v", err)
	}
	if ok {
		req.Body = body
	}

	return req, nil
}

// client создаёт HTTP клиент с нужными настройками.
func (h *HTTP) client(req *httpRequest) *http.Client {
	var checkRedirect func(*http.Request, []*http.Request) error
	if !req.FollowRedirects {
		checkRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	transport := h.transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !req.ValidateSSL,
			},
		}
	}

	return &http.Client{
		Timeout:       req.Timeout,
		CheckRedirect: checkRedirect,
		Transport:     transport,
	}
}

func buildRequest(ctx context.Context, req *httpRequest) (*http.Request, error) {
	target := req.URL
	if len(req.Query) > 0 {
		u, err := url.Parse(req.URL)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
		if _, has := req.Headers["Content-Type"]; !has && req.JSONBody {
			req.Headers["Content-Type"] = "application/json"
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

// parseResponse читает ответ в карту результата.
// Тело длиннее limit — ошибка, а не обрезанный результат.
func parseResponse(resp *http.Response, limit int64) (map[string]any, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, limit)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(data),
		}
	}

	var body any = string(data)
	if strings.Contains(resp.Header.Get("Content-Type"), "json") && len(data) > 0 {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var parsed any
		if err := dec.Decode(&parsed); err == nil {
			body = parsed
		}
	}

	headers := make(map[string]any, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"headers":     headers,
		"body":        body,
	}, nil
}

package client

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	mrand "math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/xkong/wechatbackends/pkg/jsoncompact"
)

// DefaultBaseURL is the admin console origin.
const DefaultBaseURL = "https://mp.weixin.qq.com"

// DefaultLang is sent as the lang parameter on every call.
const DefaultLang = "zh_CN"

// userAgent is the desktop browser the session pretends to be.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/30.0.1599.101 Safari/537.36"

// previewBytes bounds the response preview written to debug logs.
const previewBytes = 512

// Client is an authenticated admin console session.
//
// A Client holds mutable session state (cookies, token, upload ticket and the
// Referer header) and must not be used from more than one goroutine at a time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	lang       string
	siteDomain string
	strict     bool
	debugProxy string
	timeout    time.Duration

	token    string
	weixinID string
	ticket   string
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets a custom console origin.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
// A cookie jar is attached to a copy of it when it has none.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithDebugProxy routes every request through an intercepting proxy such as
// Fiddler or mitmproxy. Ignored when WithHTTPClient is also given.
func WithDebugProxy(proxyURL string) Option {
	return func(c *Client) {
		c.debugProxy = proxyURL
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTicket seeds the upload ticket so UploadImage skips the scrape.
func WithTicket(weixinID, ticket string) Option {
	return func(c *Client) {
		c.weixinID = weixinID
		c.ticket = ticket
	}
}

// WithSiteDomain sets the domain used to build article source URLs.
func WithSiteDomain(domain string) Option {
	return func(c *Client) {
		c.siteDomain = strings.TrimSuffix(domain, "/")
	}
}

// WithLang overrides the lang parameter.
func WithLang(lang string) Option {
	return func(c *Client) {
		c.lang = lang
	}
}

// WithStrictStatus controls whether a non-zero ret in a response body is
// returned as a *ServerError. It is enabled by default.
func WithStrictStatus(enabled bool) Option {
	return func(c *Client) {
		c.strict = enabled
	}
}

// New creates an unauthenticated client. Call Login before anything else.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: DefaultBaseURL,
		lang:    DefaultLang,
		strict:  true,
	}
	for _, opt := range opts {
		opt(c)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		// The console is reached through intercepting proxies often enough
		// that certificate checks are off for every request.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		if c.debugProxy != "" {
			proxyURL, err := url.Parse(c.debugProxy)
			if err != nil {
				return nil, fmt.Errorf("parsing debug proxy URL: %w", err)
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
		c.httpClient = &http.Client{Transport: transport, Jar: jar, Timeout: c.timeout}
	} else if c.httpClient.Jar == nil {
		hc := *c.httpClient
		hc.Jar = jar
		c.httpClient = &hc
	}

	c.headers = defaultHeaders(c.baseURL)
	return c, nil
}

// Login creates a client and authenticates it.
// passwordMD5 is the lowercase hex md5 of the account password, see HashPassword.
func Login(ctx context.Context, email, passwordMD5 string, opts ...Option) (*Client, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx, email, passwordMD5); err != nil {
		return nil, err
	}
	return c, nil
}

// HashPassword returns the md5 hex digest the login endpoint expects.
func HashPassword(raw string) string {
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Login authenticates the session and stores the token from redirect_url.
// Response codes other than 0 and 65202 (already logged in) yield a *LoginError.
func (c *Client) Login(ctx context.Context, email, passwordMD5 string) error {
	if email == "" || passwordMD5 == "" {
		return fmt.Errorf("%w: email and password are required", ErrLogin)
	}

	doc, err := c.do(ctx, &request{
		path:  "/cgi-bin/login",
		query: url.Values{"lang": {c.lang}},
		form: url.Values{
			"username": {email},
			"pwd":      {passwordMD5},
			"imgcode":  {""},
			"f":        {"json"},
		},
	})
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	ret, ok := doc.Int("base_resp", "ret")
	if !ok || (ret != RetOK && ret != RetAlreadyLoggedIn) {
		return &LoginError{Ret: ret, Msg: doc.String("base_resp", "err_msg")}
	}

	token := tokenFromRedirect(doc.String("redirect_url"))
	if token == "" {
		return &LoginError{Ret: ret, Msg: "no token in redirect_url"}
	}
	c.token = token

	slog.Debug("logged in", slog.String("email", email), slog.Int("ret", ret))
	return nil
}

// Token returns the session token, empty before Login.
func (c *Client) Token() string {
	return c.token
}

// Ticket returns the cached upload ticket and account id.
func (c *Client) Ticket() (weixinID, ticket string) {
	return c.weixinID, c.ticket
}

// SiteDomain returns the domain used for article source URLs.
func (c *Client) SiteDomain() string {
	return c.siteDomain
}

// Header returns the value of a session header.
func (c *Client) Header(name string) string {
	return c.headers.Get(name)
}

func defaultHeaders(baseURL string) http.Header {
	h := make(http.Header)
	h.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	h.Set("Referer", baseURL+"/")
	h.Set("Cache-Control", "max-age=0")
	h.Set("Origin", baseURL)
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("User-Agent", userAgent)
	return h
}

// tokenFromRedirect reads token from a redirect such as
// "/cgi-bin/home?t=home/index&lang=zh_CN&token=123".
func tokenFromRedirect(redirect string) string {
	if u, err := url.Parse(redirect); err == nil {
		if token := u.Query().Get("token"); token != "" {
			return token
		}
	}
	if i := strings.LastIndex(redirect, "="); i >= 0 {
		return redirect[i+1:]
	}
	return ""
}

func (c *Client) setReferer(referer string) {
	c.headers.Set("Referer", referer)
}

func (c *Client) requireToken() error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// formFile is a file part of a multipart body.
type formFile struct {
	field string
	name  string
	data  []byte
}

// request describes one call. A nil form with no files is sent as GET.
type request struct {
	path  string
	query url.Values
	form  url.Values
	files []formFile
}

// do sends r and decodes the body as a Document.
func (c *Client) do(ctx context.Context, r *request) (Document, error) {
	body, contentType, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body, contentType)
}

// send performs the request and returns the raw body and its content type.
func (c *Client) send(ctx context.Context, r *request) ([]byte, string, error) {
	start := time.Now()

	u, err := url.Parse(c.baseURL + r.path)
	if err != nil {
		return nil, "", fmt.Errorf("parsing URL: %w", err)
	}
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	method := http.MethodGet
	var reqBody io.Reader
	var reqContentType string
	switch {
	case len(r.files) > 0:
		method = http.MethodPost
		buf, ct, err := encodeMultipart(r.form, r.files)
		if err != nil {
			return nil, "", fmt.Errorf("encoding multipart body: %w", err)
		}
		reqBody, reqContentType = buf, ct
	case r.form != nil:
		method = http.MethodPost
		reqBody = strings.NewReader(r.form.Encode())
		reqContentType = "application/x-www-form-urlencoded; charset=UTF-8"
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	for name, values := range c.headers {
		req.Header[name] = append([]string(nil), values...)
	}
	if reqContentType != "" {
		req.Header.Set("Content-Type", reqContentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("HTTP request failed",
			slog.String("method", method),
			slog.String("path", r.path),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		slog.Debug("HTTP request returned error",
			slog.String("method", method),
			slog.String("path", r.path),
			slog.Int("status", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, "", &APIError{StatusCode: resp.StatusCode, Message: jsoncompact.Preview(body, previewBytes)}
	}

	slog.Debug("HTTP request completed",
		slog.String("method", method),
		slog.String("path", r.path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		slog.String("body", jsoncompact.Preview(body, previewBytes)),
	)

	return body, resp.Header.Get("Content-Type"), nil
}

// check applies the strict status policy to a decoded response.
func (c *Client) check(doc Document) (Document, error) {
	if !c.strict {
		return doc, nil
	}
	return doc, doc.Err()
}

func encodeMultipart(form url.Values, files []formFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range form[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", "application/octet-stream")
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// randomParam mimics the cache-busting Math.random() the console sends.
func randomParam() string {
	return strconv.FormatFloat(mrand.Float64(), 'f', -1, 64)
}

// uploadName returns a throwaway file name of 16 hex characters.
func uploadName() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16) + ".jpg"
	}
	return hex.EncodeToString(b) + ".jpg"
}

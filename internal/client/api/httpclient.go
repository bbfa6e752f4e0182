package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/eduterm/internal/client/models"
)

// HTTPClient is the Client implementation over net/http.
//
// The embedded http.Client carries no global timeout: the chat stream may
// legitimately stay open for minutes. Non-streaming calls get a per-request
// deadline instead.
type HTTPClient struct {
	baseURL        string
	http           *http.Client
	requestTimeout time.Duration
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, requestTimeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{},
		requestTimeout: requestTimeout,
	}
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var resp authResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", authRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", nil, err
	}
	return resp.Token, resp.User, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password, name string) (string, *models.User, error) {
	var resp authResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", authRequest{Email: email, Password: password, Name: name}, &resp)
	if err != nil {
		return "", nil, err
	}
	return resp.Token, resp.User, nil
}

func (c *HTTPClient) SendCode(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.doJSON(ctx, http.MethodPost, "/auth/send-code", "", body, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	body := map[string]string{"email": email, "code": code, "password": newPassword}
	return c.doJSON(ctx, http.MethodPost, "/auth/reset-password", "", body, nil)
}

func (c *HTTPClient) Models(ctx context.Context, token string) ([]string, error) {
	var resp struct {
		Models []string `json:"models"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/ai/models", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

func (c *HTTPClient) Profile(ctx context.Context, token string) (*models.User, error) {
	var resp models.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/profile", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Chat opens the streaming completion. On 401 the body is discarded without
// parsing and ErrUnauthorized is returned; on any other non-2xx a short
// error detail is read and wrapped in ErrRequestFailed. On success the
// caller owns the returned Stream and must close it.
func (c *HTTPClient) Chat(ctx context.Context, token, model string, history []Message) (*Stream, error) {
	payload, err := json.Marshal(chatRequest{Model: model, Messages: history})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		detail := readDetail(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s%s", ErrRequestFailed, resp.Status, detail)
	}

	return NewStream(resp.Body), nil
}

// PublicStats is best-effort: any failure yields (nil, false), never an error.
func (c *HTTPClient) PublicStats(ctx context.Context) (*Stats, bool) {
	var resp Stats
	if err := c.doJSON(ctx, http.MethodGet, "/stats/public", "", nil, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// SubmitFeedback is best-effort: the result only says whether it was accepted.
func (c *HTTPClient) SubmitFeedback(ctx context.Context, token, text string) bool {
	body := map[string]string{"text": text}
	return c.doJSON(ctx, http.MethodPost, "/feedback", token, body, nil) == nil
}

// doJSON runs one non-streaming JSON round trip with the configured request
// deadline and maps the response status through mapStatus.
func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: %s%s", ErrRequestFailed, resp.Status, readDetail(resp.Body))
	}
}

// readDetail extracts a short error description from an error response body.
func readDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(bytes.TrimSpace(b)) == 0 {
		return ""
	}
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return ": " + e.Error
	}
	return ": " + string(bytes.TrimSpace(b))
}

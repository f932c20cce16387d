package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"sync"
	"time"
)

// APIError is returned when Daraja rejects a request with its error
// envelope. The provider's own message is preserved for the caller.
type APIError struct {
	RequestID string `json:"requestId"`
	Code      string `json:"errorCode"`
	Message   string `json:"errorMessage"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mpesa error %s: %s", e.Code, e.Message)
}

// Client manages communication with the Safaricom Daraja API.
type Client struct {
	BaseURL        *url.URL
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
	HTTPClient     *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

const (
	productionBaseURL = "https://api.safaricom.co.ke"
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"

	// tokenSkew renews the cached OAuth token slightly before Daraja
	// would expire it.
	tokenSkew = 30 * time.Second
)

// NewClient initializes a Daraja client. If sandboxMode is true the
// sandbox host is used. The HTTP timeout bounds every provider call,
// including the token fetch.
func NewClient(consumerKey, consumerSecret, shortCode, passkey, callbackURL string, sandboxMode bool, timeout time.Duration) (*Client, error) {
	base := productionBaseURL
	if sandboxMode {
		base = sandboxBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		BaseURL:        parsed,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		ShortCode:      shortCode,
		Passkey:        passkey,
		CallbackURL:    callbackURL,
		HTTPClient:     &http.Client{Timeout: timeout},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"` // Daraja sends this as a string
}

// token returns a cached OAuth token, fetching a fresh one when the
// cached one is missing or about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSkew)) {
		return c.accessToken, nil
	}

	u := *c.BaseURL
	u.Path = path.Join(c.BaseURL.Path, "oauth/v1/generate")
	u.RawQuery = "grant_type=client_credentials"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.ConsumerKey, c.ConsumerSecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa token request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp.StatusCode, raw)
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", fmt.Errorf("mpesa token response malformed: %w", err)
	}
	ttl, err := strconv.Atoi(tok.ExpiresIn)
	if err != nil || ttl <= 0 {
		ttl = 3600
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(ttl) * time.Second)
	return c.accessToken, nil
}

// doRequest builds, executes and parses one authenticated POST against
// Daraja. Provider rejections come back as *APIError; transport
// problems as plain errors. No automatic retries – the caller decides.
func (c *Client) doRequest(ctx context.Context, reqPath string, body any, out any) error {
	bearer, err := c.token(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	u := *c.BaseURL
	u.Path = path.Join(c.BaseURL.Path, reqPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("mpesa request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("mpesa response malformed: %w", err)
		}
	}
	return nil
}

func parseAPIError(status int, raw []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return &apiErr
	}
	return fmt.Errorf("mpesa returned HTTP %d: %s", status, string(raw))
}

// password derives the STK push credential for a given timestamp:
// base64(shortcode + passkey + timestamp).
func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.ShortCode + c.Passkey + timestamp))
}

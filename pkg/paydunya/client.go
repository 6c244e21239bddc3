package paydunya

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/terangalabs/kadoo-backend/pkg/config"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

const (
	testMode = "test"
	liveMode = "live"

	defaultTimeout = 10 * time.Second
)

var (
	errMasterKeyRequired     = errors.New("paydunya master key is required")
	errPrivateKeyRequired    = errors.New("paydunya private key is required")
	errTokenRequired         = errors.New("paydunya token is required")
	errWebhookSecretRequired = errors.New("paydunya webhook secret is required")
	errInvalidMode           = fmt.Errorf("paydunya mode must be %q or %q", testMode, liveMode)
)

// httpDoer lets tests swap the transport.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps PayDunya's REST API with centralized auth, timeouts, and error
// mapping. Every call is bounded by the configured timeout; a timeout surfaces
// as a dependency error and recovery is left to the reconciliation sweep.
type Client struct {
	http          httpDoer
	baseURL       string
	masterKey     string
	privateKey    string
	token         string
	webhookSecret string
	mode          string
	callbackURL   string
	logger        *logger.Logger
}

// NewClient validates the credentials and initializes the wrapper.
func NewClient(ctx context.Context, cfg config.PayDunyaConfig, logg *logger.Logger) (*Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode != testMode && mode != liveMode {
		return nil, errInvalidMode
	}
	if strings.TrimSpace(cfg.MasterKey) == "" {
		return nil, errMasterKeyRequired
	}
	if strings.TrimSpace(cfg.PrivateKey) == "" {
		return nil, errPrivateKeyRequired
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errTokenRequired
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, errWebhookSecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		http:          &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		masterKey:     cfg.MasterKey,
		privateKey:    cfg.PrivateKey,
		token:         cfg.Token,
		webhookSecret: cfg.WebhookSecret,
		mode:          mode,
		callbackURL:   cfg.CallbackURL,
		logger:        logg,
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("paydunya client initialized (%s)", mode))
	}
	return c, nil
}

// WebhookSecret returns the webhook signing secret.
func (c *Client) WebhookSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// VerifySignature checks the HMAC-SHA256 hex signature of a webhook payload.
func VerifySignature(payload []byte, secret, header string) bool {
	if header == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}

// CreateCheckout registers a hosted checkout invoice and returns the redirect URL.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	if req.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout amount must be positive")
	}
	if strings.TrimSpace(req.Reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout reference is required")
	}
	if req.CallbackURL == "" {
		req.CallbackURL = c.callbackURL
	}

	var resp CheckoutResponse
	if err := c.post(ctx, "/checkout-invoice/create", req, &resp); err != nil {
		return nil, err
	}
	if resp.PaymentURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "provider returned no payment url")
	}
	return &resp, nil
}

// CheckTransaction queries the authoritative status for a reference.
func (c *Client) CheckTransaction(ctx context.Context, reference string) (*Transaction, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}
	var tx Transaction
	if err := c.get(ctx, "/checkout-invoice/confirm/"+url.PathEscape(reference), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Refund asks the provider to return a completed payment.
func (c *Client) Refund(ctx context.Context, reference string, amount int64) error {
	if strings.TrimSpace(reference) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	body := map[string]any{"reference": reference, "amount": amount}
	return c.post(ctx, "/refunds", body, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode provider request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build provider request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build provider request")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("PAYDUNYA-MASTER-KEY", c.masterKey)
	req.Header.Set("PAYDUNYA-PRIVATE-KEY", c.privateKey)
	req.Header.Set("PAYDUNYA-TOKEN", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call payment provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "provider transaction not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("provider returned status %d", resp.StatusCode))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode provider response")
	}
	return nil
}

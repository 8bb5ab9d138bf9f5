package hibp

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hazcod/pwcheck/pkg/apierr"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.pwnedpasswords.com/range/"
	UserAgent      = "PasswordBreachChecker"
	DefaultTimeout = 10 * time.Second

	// PrefixLength is the number of hex characters of the digest sent upstream.
	PrefixLength = 5

	// padded range responses are well under this size
	maxBodyBytes = 4 << 20
)

const (
	MsgPasswordMissing = "Password not provided."
	MsgAPIKeyMissing   = "API key not provided."
	MsgInvalidAPIKey   = "Invalid API key."
)

// Result is the outcome of a range lookup.
type Result struct {
	Breached bool
	Count    int
}

// Client queries the Pwned Passwords range API.
type Client struct {
	httpClient *http.Client
	logger     *logrus.Logger
	baseURL    string
	userAgent  string
}

type Option func(*Client)

// WithBaseURL points the client at another range endpoint. The hash prefix is appended as-is.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		c.baseURL = baseURL
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new HIBP client
func NewClient(logger *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:    logger,
		baseURL:   DefaultBaseURL,
		userAgent: UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SplitHash returns the uppercase hex SHA-1 of password split into the
// prefix sent upstream and the suffix matched locally.
func SplitHash(password string) (prefix, suffix string) {
	hash := sha1.Sum([]byte(password))
	hashStr := strings.ToUpper(hex.EncodeToString(hash[:]))
	return hashStr[:PrefixLength], hashStr[PrefixLength:]
}

// CheckPassword reports whether password appears in the breach corpus and how often.
// Only the first PrefixLength characters of the digest leave the process.
func (c *Client) CheckPassword(ctx context.Context, password, apiKey string) (*Result, error) {
	if password == "" {
		return nil, apierr.Validation(MsgPasswordMissing)
	}
	if apiKey == "" {
		return nil, apierr.Validation(MsgAPIKeyMissing)
	}

	prefix, suffix := SplitHash(password)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+prefix, nil)
	if err != nil {
		return nil, apierr.New(apierr.KindNetwork, 0, "Network error: "+err.Error(), err)
	}

	req.Header.Set("Add-Padding", "true")
	req.Header.Set("hibp-api-key", apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.WithField("prefix", prefix).Debug("checking password hash prefix with HIBP")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierr.New(apierr.KindNetwork, 0, "Network error: "+err.Error(), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apierr.New(apierr.KindUpstreamAuth, http.StatusUnauthorized, MsgInvalidAPIKey, nil)
	case resp.StatusCode != http.StatusOK:
		return nil, apierr.New(apierr.KindUpstreamStatus, resp.StatusCode,
			fmt.Sprintf("API error: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apierr.New(apierr.KindNetwork, 0, "Network error: "+err.Error(), err)
	}

	count, found, err := matchSuffix(string(body), suffix)
	if err != nil {
		c.logger.WithError(err).WithField("prefix", prefix).Warn("failed to parse breach count")
		return nil, apierr.New(apierr.KindUpstreamStatus, http.StatusBadGateway, "API error: malformed response", err)
	}

	if !found {
		c.logger.WithField("prefix", prefix).Debug("password not found in breaches")
		return &Result{}, nil
	}

	c.logger.WithFields(logrus.Fields{
		"prefix": prefix,
		"count":  count,
	}).Debug("password found in breaches")

	return &Result{Breached: true, Count: count}, nil
}

// matchSuffix scans SUFFIX:COUNT records for an exact, case-sensitive suffix match.
func matchSuffix(body, suffix string) (int, bool, error) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ":")
		if len(parts) != 2 || parts[0] != suffix {
			continue
		}

		count, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, false, fmt.Errorf("invalid breach count %q: %w", parts[1], err)
		}
		return count, true, nil
	}

	return 0, false, nil
}

package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aasan/postgang/internal/domain"
)

const (
	// DefaultBringEndpoint base URL of the Bring postal code API
	DefaultBringEndpoint = "https://api.bring.com/address/api"

	headerUID = "X-Mybring-API-Uid"
	headerKey = "X-Mybring-API-Key"
	norway    = "no"

	// errorBodyLimit bytes of an error response kept for the message
	errorBodyLimit = 512
)

// BringClient fetches mailbox delivery dates from the Bring postal code API
type BringClient struct {
	creds      domain.Credentials
	httpClient *http.Client
	endpoint   string
}

// NewBringClient creates a Bring API client
func NewBringClient(creds domain.Credentials) *BringClient {
	return &BringClient{
		creds: creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoint: DefaultBringEndpoint,
	}
}

// NewBringClientWithEndpoint creates a Bring API client for another base URL (test servers, proxies)
func NewBringClientWithEndpoint(creds domain.Credentials, endpoint string) *BringClient {
	c := NewBringClient(creds)
	c.endpoint = strings.TrimSuffix(endpoint, "/")
	return c
}

// DeliveryDates fetches the upcoming delivery dates for code with a single GET request
func (c *BringClient) DeliveryDates(ctx context.Context, code domain.PostalCode) (domain.DeliveryDateSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(code), nil)
	if err != nil {
		return domain.DeliveryDateSet{}, domain.NewSourceError(domain.KindNetwork,
			fmt.Errorf("failed to build Bring API request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerUID, c.creds.APIUID)
	req.Header.Set(headerKey, c.creds.APIKey.Reveal())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.DeliveryDateSet{}, domain.NewSourceError(domain.KindNetwork,
			fmt.Errorf("Bring API request failed: %w", redactURLError(err)))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.DeliveryDateSet{}, domain.NewSourceError(domain.KindAuth,
			fmt.Errorf("Bring API rejected the credentials (Status: %d)%s", resp.StatusCode, errorDetail(resp.Body)))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return domain.DeliveryDateSet{}, domain.NewSourceError(domain.KindNetwork,
			fmt.Errorf("Bring API call failed (Status: %d)%s", resp.StatusCode, errorDetail(resp.Body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.DeliveryDateSet{}, domain.NewSourceError(domain.KindNetwork,
			fmt.Errorf("failed to read Bring API response: %w", err))
	}

	return decodeDeliveryDates(body)
}

// requestURL e.g. https://api.bring.com/address/api/no/postal-codes/0357/mailbox-delivery-dates
func (c *BringClient) requestURL(code domain.PostalCode) string {
	return fmt.Sprintf("%s/%s/postal-codes/%s/mailbox-delivery-dates",
		c.endpoint, norway, url.PathEscape(code.String()))
}

// errorDetail reads a bounded snippet of an error response body
func errorDetail(body io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(body, errorBodyLimit))
	if err != nil || len(b) == 0 {
		return ""
	}
	return ": " + string(b)
}

// redactURLError drops the URL wrapper so timeouts read cleanly
func redactURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}

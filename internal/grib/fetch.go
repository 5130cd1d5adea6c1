package grib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wxslice/wxslice/pkg/logger"
)

// Client performs the two network operations this package needs: fetching
// an index resource and fetching one byte range of the binary resource.
// Every call carries a bounded timeout via its context; there is no retry
// and no chunking, a single failure surfaces immediately.
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new fetch client with the given per-request timeout.
func NewClient(timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Named("grib-client"),
	}
}

// FetchIndex retrieves and parses the index resource at idxURL. A network
// or HTTP failure is returned as *IndexFetchError; malformed lines inside
// an otherwise retrievable index are dropped by the parser, not reported.
func (c *Client) FetchIndex(ctx context.Context, idxURL string) (Inventory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, idxURL, nil)
	if err != nil {
		return nil, &IndexFetchError{URL: idxURL, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &IndexFetchError{URL: idxURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &IndexFetchError{URL: idxURL, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &IndexFetchError{URL: idxURL, Err: err}
	}

	inv := ParseInventory(string(body))
	c.logger.Debug("Fetched index",
		logger.String("url", idxURL),
		logger.Int("records", len(inv)))
	return inv, nil
}

// FetchRange retrieves one byte range of the resource at url. A nil
// byteEnd means "from byteStart to end of resource". The range is
// inclusive on both ends.
func (c *Client) FetchRange(ctx context.Context, url string, byteStart int64, byteEnd *int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &PartialFetchError{URL: url, ByteStart: byteStart, ByteEnd: byteEnd, Err: err}
	}

	if byteEnd != nil {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", byteStart, *byteEnd))
	} else {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", byteStart))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &PartialFetchError{URL: url, ByteStart: byteStart, ByteEnd: byteEnd, Err: err}
	}
	defer resp.Body.Close()

	// Servers that honor the range reply 206; some object stores reply
	// 200 with the full body for an open-ended range at offset 0.
	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return nil, &PartialFetchError{URL: url, ByteStart: byteStart, ByteEnd: byteEnd,
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &PartialFetchError{URL: url, ByteStart: byteStart, ByteEnd: byteEnd, Err: err}
	}

	c.logger.Debug("Fetched byte range",
		logger.String("url", url),
		logger.Int64("byte_start", byteStart),
		logger.Int("bytes", len(data)))
	return data, nil
}

// CheckAvailability probes the index resource with a HEAD request and
// reports whether the dataset appears to be published.
func (c *Client) CheckAvailability(ctx context.Context, idxURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, idxURL, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

package xmlapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mdzio/go-logging"
)

// max. size of a valid response, if not specified: 10 MB
const responseSizeLimit = 10 * 1024 * 1024

var clnLog = logging.Get("ebay-client")

// Caller is an interface for calling API functions.
type Caller interface {
	Call(ctx context.Context, command string, input interface{}, opts ...Option) (*Response, error)
}

// Cache stores raw response bodies.
type Cache interface {
	Fetch(ctx context.Context, key string) ([]byte, bool)
	Store(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Client provides access to the Trading API. Calls are not retried.
type Client struct {
	Config

	// Transport for the HTTP requests. If nil, http.DefaultTransport wrapped
	// by a LoggingTransport is used.
	Transport http.RoundTripper

	// Optional cache for responses of calls with option WithCacheTTL.
	Cache Cache
}

// Call executes a remote procedure call. Call implements Caller.
//
// An error is returned for transport failures, a HTTP status other than 2xx
// (*StatusError) and invalid XML. A failure reported by the API is returned
// as regular response, see Response.APIError.
func (c *Client) Call(ctx context.Context, command string, input interface{}, opts ...Option) (*Response, error) {
	return c.Do(ctx, NewRequest(c.Config, command, input, opts...))
}

// Do executes a prepared request.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	clnLog.Debugf("Calling %s on %s", req.Command, req.URI)
	if clnLog.TraceEnabled() {
		clnLog.Tracef("Request XML: %s", req.maskedBody())
	}

	// cached?
	var cacheKey string
	if c.Cache != nil && req.CacheTTL > 0 {
		cacheKey = req.CacheKey()
		if data, ok := c.Cache.Fetch(ctx, cacheKey); ok {
			resp, err := NewResponse(req, http.StatusOK, http.Header{}, data)
			if err == nil {
				clnLog.Debugf("Response for %s served from cache", req.Command)
				return resp, nil
			}
			clnLog.Warningf("Ignoring invalid cache entry for %s: %v", req.Command, err)
		}
	}

	// timeout
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	// http post
	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("Creating of request for %s failed: %w", req.URI, err)
	}
	httpClient := &http.Client{Transport: c.transport()}
	httpResp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed on %s: %w", req.URI, err)
	}
	defer httpResp.Body.Close()

	// read response
	limit := c.ResponseSizeLimit
	if limit == 0 {
		limit = responseSizeLimit
	}
	respBuf, err := io.ReadAll(io.LimitReader(httpResp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("Reading of response failed from %s: %w", req.URI, err)
	}
	if clnLog.TraceEnabled() {
		clnLog.Tracef("Response XML: %s", string(respBuf))
	}

	// check status
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Status: httpResp.Status, Body: respBuf}
	}

	// decode response
	resp, err := NewResponse(req, httpResp.StatusCode, httpResp.Header, respBuf)
	if err != nil {
		return nil, fmt.Errorf("Decoding of response from %s failed: %w", req.URI, err)
	}
	if !resp.Success() {
		clnLog.Debugf("Call %s returned ack %s", req.Command, resp.Ack())
		return resp, nil
	}

	// update cache
	if cacheKey != "" {
		if err := c.Cache.Store(ctx, cacheKey, respBuf, req.CacheTTL); err != nil {
			clnLog.Warningf("Caching of response for %s failed: %v", req.Command, err)
		}
	}
	return resp, nil
}

func (c *Client) transport() http.RoundTripper {
	if c.Transport != nil {
		return c.Transport
	}
	return NewLoggingTransport(http.DefaultTransport)
}

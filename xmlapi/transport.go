package xmlapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mdzio/go-logging"
)

// RequestIDHeader carries the id of an outgoing request.
const RequestIDHeader = "X-Request-Id"

var trLog = logging.Get("ebay-transport")

// LoggingTransport logs every outgoing request with a unique id, the status
// code and the duration.
type LoggingTransport struct {
	Transport http.RoundTripper
}

// NewLoggingTransport wraps rt.
func NewLoggingTransport(rt http.RoundTripper) *LoggingTransport {
	return &LoggingTransport{Transport: rt}
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.New().String()
		// a RoundTripper must not modify the request
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, id)
	}
	call := req.Header.Get(HeaderCallName)
	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		trLog.Debugf("Outgoing request %s (call: %s, id: %s) failed after %s: %v",
			req.URL, call, id, time.Since(start), err)
		return nil, err
	}
	trLog.Debugf("Outgoing request %s (call: %s, id: %s) returned %d in %s",
		req.URL, call, id, resp.StatusCode, time.Since(start))
	return resp, nil
}

package xmlapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Endpoints of the Trading API.
const (
	ProductionURI = "https://api.ebay.com/ws/api.dll"
	SandboxURI    = "https://api.sandbox.ebay.com/ws/api.dll"
)

// Namespace of requests and responses.
const Namespace = "urn:ebay:apis:eBLBaseComponents"

// Defaults for a zero Config.
const (
	DefaultCompatibilityLevel = 1173
	DefaultTimeout            = 60 * time.Second
)

// HTTP headers of a request.
const (
	HeaderCompatibilityLevel = "X-EBAY-API-COMPATIBILITY-LEVEL"
	HeaderDevName            = "X-EBAY-API-DEV-NAME"
	HeaderAppName            = "X-EBAY-API-APP-NAME"
	HeaderCertName           = "X-EBAY-API-CERT-NAME"
	HeaderCallName           = "X-EBAY-API-CALL-NAME"
	HeaderSiteID             = "X-EBAY-API-SITEID"
	HeaderIAFToken           = "X-EBAY-API-IAF-TOKEN"
)

// Config holds the defaults for all requests of a client.
type Config struct {
	// URI of the API endpoint, defaults to ProductionURI.
	URI string

	// Auth'n'Auth token, sent in the RequesterCredentials block.
	AuthToken string

	// eBay site, 0 is the US site.
	SiteID int

	// Defaults to DefaultCompatibilityLevel.
	CompatibilityLevel int

	// Application keys.
	DevName  string
	AppName  string
	CertName string

	// Timeout of a call, defaults to DefaultTimeout. It bounds the whole
	// round trip (connect, send and read of the response) through the
	// request context, not only the read. A negative value disables the
	// timeout.
	Timeout time.Duration

	// Max. size of a response, defaults to 10 MB.
	ResponseSizeLimit int64
}

// Option overrides a Config setting for a single call.
type Option func(r *Request)

// WithAuthToken overrides the auth token.
func WithAuthToken(token string) Option {
	return func(r *Request) {
		r.AuthToken = token
	}
}

// WithSiteID overrides the site.
func WithSiteID(siteID int) Option {
	return func(r *Request) {
		r.SiteID = siteID
	}
}

// WithCompatibilityLevel overrides the compatibility level.
func WithCompatibilityLevel(level int) Option {
	return func(r *Request) {
		r.CompatibilityLevel = level
	}
}

// WithURI overrides the endpoint.
func WithURI(uri string) Option {
	return func(r *Request) {
		r.URI = uri
	}
}

// WithTimeout overrides the timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Request) {
		r.Timeout = timeout
	}
}

// WithHeaders adds custom HTTP headers. They override the standard headers.
// Attention: If custom headers are present, the RequesterCredentials block is
// not sent (e.g. use an OAuth token in header X-EBAY-API-IAF-TOKEN instead).
func WithHeaders(headers map[string]string) Option {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			r.Headers[k] = v
		}
	}
}

// WithCacheTTL enables caching of a successful response, if the client has
// a cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Request) {
		r.CacheTTL = ttl
	}
}

// Request is a single API call.
type Request struct {
	Command string
	Input   interface{}

	URI                string
	AuthToken          string
	SiteID             int
	CompatibilityLevel int
	DevName            string
	AppName            string
	CertName           string
	Headers            map[string]string
	Timeout            time.Duration
	CacheTTL           time.Duration
}

// NewRequest creates a request from the config defaults and the options.
func NewRequest(cfg Config, command string, input interface{}, opts ...Option) *Request {
	r := &Request{
		Command:            command,
		Input:              input,
		URI:                cfg.URI,
		AuthToken:          cfg.AuthToken,
		SiteID:             cfg.SiteID,
		CompatibilityLevel: cfg.CompatibilityLevel,
		DevName:            cfg.DevName,
		AppName:            cfg.AppName,
		CertName:           cfg.CertName,
		Timeout:            cfg.Timeout,
	}
	if r.URI == "" {
		r.URI = ProductionURI
	}
	if r.CompatibilityLevel == 0 {
		r.CompatibilityLevel = DefaultCompatibilityLevel
	}
	if r.Timeout == 0 {
		r.Timeout = DefaultTimeout
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// credentials returns true, if the RequesterCredentials block is sent.
func (r *Request) credentials() bool {
	return r.AuthToken != "" && len(r.Headers) == 0
}

// Body renders the XML document of the request.
func (r *Request) Body() []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	b.WriteString("<" + r.Command + `Request xmlns="` + Namespace + `">`)
	if r.credentials() {
		b.WriteString("<RequesterCredentials><eBayAuthToken>")
		b.WriteString(r.AuthToken)
		b.WriteString("</eBayAuthToken></RequesterCredentials>")
	}
	if r.Input != nil {
		b.WriteString(Serialize(r.Input))
	}
	b.WriteString("</" + r.Command + "Request>")
	return []byte(b.String())
}

// Header returns the HTTP headers of the request.
func (r *Request) Header() http.Header {
	h := make(http.Header)
	h.Set(HeaderCompatibilityLevel, strconv.Itoa(r.CompatibilityLevel))
	h.Set(HeaderDevName, r.DevName)
	h.Set(HeaderAppName, r.AppName)
	h.Set(HeaderCertName, r.CertName)
	h.Set(HeaderCallName, r.Command)
	h.Set(HeaderSiteID, strconv.Itoa(r.SiteID))
	h.Set("Content-Type", "text/xml")
	for k, v := range r.Headers {
		h.Set(k, v)
	}
	return h
}

// HTTPRequest creates the HTTP POST request.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URI, bytes.NewReader(r.Body()))
	if err != nil {
		return nil, err
	}
	req.Header = r.Header()
	return req, nil
}

// CacheKey identifies the request for response caching. It covers endpoint,
// headers and body.
func (r *Request) CacheKey() string {
	h := sha256.New()
	h.Write([]byte(r.URI))
	hdr := r.Header()
	keys := make([]string, 0, len(hdr))
	for k := range hdr {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte("\n" + k + ": " + strings.Join(hdr[k], ",")))
	}
	h.Write([]byte("\n\n"))
	h.Write(r.Body())
	return "ebay:" + r.Command + ":" + hex.EncodeToString(h.Sum(nil))
}

// maskedBody returns the body with the auth token blanked out for logging.
func (r *Request) maskedBody() string {
	body := string(r.Body())
	if r.AuthToken != "" {
		body = strings.ReplaceAll(body, r.AuthToken, "***")
	}
	return body
}

// CommandName converts a snake case name into the API casing, e.g.
// get_ebay_official_time into GeteBayOfficialTime. The word ebay is always
// written as eBay. Names without underscore are only capitalized.
func CommandName(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if strings.EqualFold(p, "ebay") {
			parts[i] = "eBay"
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

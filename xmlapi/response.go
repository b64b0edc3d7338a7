package xmlapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mdzio/go-ebay/record"
)

// Ack values of a response.
const (
	AckSuccess        = "Success"
	AckWarning        = "Warning"
	AckFailure        = "Failure"
	AckPartialFailure = "PartialFailure"
)

// Severity codes of an error entry.
const (
	SeverityError   = "Error"
	SeverityWarning = "Warning"
)

// Response is a parsed API response.
type Response struct {
	// Originating request, may be nil.
	Request *Request

	StatusCode int
	Header     http.Header
	Body       []byte

	// Name of the body element, e.g. GetItemResponse.
	Name string

	rec *record.Record
}

// NewResponse parses the response body.
func NewResponse(req *Request, statusCode int, header http.Header, body []byte) (*Response, error) {
	root, err := Parse(body)
	if err != nil {
		return nil, err
	}
	if req != nil && root.Name != req.Command+"Response" {
		clnLog.Warningf("Unexpected response element %s for call %s", root.Name, req.Command)
	}
	return &Response{
		Request:    req,
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
		Name:       root.Name,
		rec:        record.New(root.Structure()),
	}, nil
}

// Record returns the response body.
func (r *Response) Record() *record.Record {
	return r.rec
}

// Get returns a member of the response body (case-insensitive).
func (r *Response) Get(key string) *record.Record {
	return r.rec.Get(key)
}

// Ack returns the status of the call, e.g. Success or Failure.
func (r *Response) Ack() string {
	return r.rec.Get("Ack").String()
}

// Success returns true, if the ack is Success or Warning.
func (r *Response) Success() bool {
	ack := r.Ack()
	return strings.EqualFold(ack, AckSuccess) || strings.EqualFold(ack, AckWarning)
}

// Errors returns the entries of the Errors collection. A Success response
// may contain entries with severity Warning.
func (r *Response) Errors() []*record.Record {
	return r.rec.Get("Errors").Items()
}

// ErrorDetails returns the Errors collection as ErrorDetail's.
func (r *Response) ErrorDetails() []ErrorDetail {
	var ds []ErrorDetail
	for _, e := range r.Errors() {
		ds = append(ds, ErrorDetailOf(e))
	}
	return ds
}

// Warnings returns the entries with severity Warning.
func (r *Response) Warnings() []ErrorDetail {
	var ws []ErrorDetail
	for _, d := range r.ErrorDetails() {
		if strings.EqualFold(d.SeverityCode, SeverityWarning) {
			ws = append(ws, d)
		}
	}
	return ws
}

// APIError returns nil on success. Otherwise an *APIError with the reported
// errors is returned. Whether this is treated as failure is up to the
// caller.
func (r *Response) APIError() *APIError {
	if r.Success() {
		return nil
	}
	e := &APIError{Ack: r.Ack(), Errors: r.ErrorDetails()}
	if r.Request != nil {
		e.Command = r.Request.Command
	}
	return e
}

// Timestamp returns the official eBay time of the response.
func (r *Response) Timestamp() (time.Time, error) {
	return r.rec.Get("Timestamp").Time()
}

// Version returns the schema version of the response.
func (r *Response) Version() string {
	return r.rec.Get("Version").String()
}

// Build returns the software build of the API server.
func (r *Response) Build() string {
	return r.rec.Get("Build").String()
}

// CorrelationID returns the correlation id, if the request contained one.
func (r *Response) CorrelationID() string {
	return r.rec.Get("CorrelationID").String()
}

// ErrorDetail is an entry of the Errors collection.
type ErrorDetail struct {
	ShortMessage        string
	LongMessage         string
	ErrorCode           string
	SeverityCode        string
	ErrorClassification string
}

// ErrorDetailOf reads an ErrorDetail from an error record.
func ErrorDetailOf(e *record.Record) ErrorDetail {
	return ErrorDetail{
		ShortMessage:        e.Get("ShortMessage").String(),
		LongMessage:         e.Get("LongMessage").String(),
		ErrorCode:           e.Get("ErrorCode").String(),
		SeverityCode:        e.Get("SeverityCode").String(),
		ErrorClassification: e.Get("ErrorClassification").String(),
	}
}

func (d ErrorDetail) String() string {
	msg := d.LongMessage
	if msg == "" {
		msg = d.ShortMessage
	}
	return fmt.Sprintf("%s: %s", d.ErrorCode, msg)
}

// APIError is a failure reported by the API in the response body.
type APIError struct {
	Command string
	Ack     string
	Errors  []ErrorDetail
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("API call %s failed (ack: %s)", e.Command, e.Ack)
	}
	msgs := make([]string, len(e.Errors))
	for i, d := range e.Errors {
		msgs[i] = d.String()
	}
	return fmt.Sprintf("API call %s failed (ack: %s, errors: %s)", e.Command, e.Ack, strings.Join(msgs, "; "))
}

// Code returns the code of the first entry which is not a warning, or an
// empty string.
func (e *APIError) Code() string {
	for _, d := range e.Errors {
		if !strings.EqualFold(d.SeverityCode, SeverityWarning) {
			return d.ErrorCode
		}
	}
	return ""
}

// StatusError is returned for a HTTP status other than 2xx.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return "HTTP request failed with status: " + e.Status
}

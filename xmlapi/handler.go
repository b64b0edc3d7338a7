package xmlapi

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mdzio/go-logging"

	"github.com/mdzio/go-ebay/record"
)

// max. size of a valid request, if not specified: 10 MB
const requestSizeLimit = 10 * 1024 * 1024

var svrLog = logging.Get("ebay-stub")

// Handler implements a http.Handler which answers API calls like the Trading
// API does. Calls are dispatched by the call name header to the registered
// Method's. It is meant for tests and local development.
type Handler struct {
	RequestSizeLimit int64

	// If not empty, calls must carry this token in the RequesterCredentials
	// block or in header X-EBAY-API-IAF-TOKEN.
	AuthToken string

	// Clock for the response timestamps, defaults to time.Now.
	Now func() time.Time

	Dispatcher
}

func (h *Handler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	svrLog.Tracef("Request received from %s, URI %s", req.RemoteAddr, req.RequestURI)

	if req.Method != http.MethodPost {
		http.Error(resp, "Method not allowed: "+req.Method, http.StatusMethodNotAllowed)
		return
	}

	// read request
	limit := h.RequestSizeLimit
	if limit == 0 {
		limit = requestSizeLimit
	}
	reqBuf, err := io.ReadAll(http.MaxBytesReader(resp, req.Body, limit))
	if err != nil {
		svrLog.Errorf("Reading of request failed from %s: %v", req.RemoteAddr, err)
		http.Error(resp, "Reading of request failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if svrLog.TraceEnabled() {
		svrLog.Tracef("Request XML: %s", string(reqBuf))
	}

	// decode request
	command := req.Header.Get(HeaderCallName)
	if command == "" {
		svrLog.Errorf("Missing call name in request from %s", req.RemoteAddr)
		http.Error(resp, "Missing header "+HeaderCallName, http.StatusBadRequest)
		return
	}
	root, err := Parse(reqBuf)
	if err != nil {
		svrLog.Errorf("Decoding of request from %s failed: %v", req.RemoteAddr, err)
		http.Error(resp, "Decoding of request failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if root.Name != command+"Request" {
		svrLog.Errorf("Request element %s does not match call %s from %s", root.Name, command, req.RemoteAddr)
		http.Error(resp, "Request element "+root.Name+" does not match call "+command, http.StatusBadRequest)
		return
	}
	input := record.New(root.Structure())

	// dispatch call
	var result interface{}
	if h.authorized(req, input) {
		result, err = h.Dispatch(command, input)
	} else {
		err = &APIError{
			Command: command,
			Ack:     AckFailure,
			Errors: []ErrorDetail{{
				ShortMessage:        "Auth token is invalid.",
				LongMessage:         "Validation of the authentication token in API request failed.",
				ErrorCode:           "931",
				SeverityCode:        SeverityError,
				ErrorClassification: "RequestError",
			}},
		}
	}
	if err != nil {
		svrLog.Warningf("Sending error response to %s: %v", req.RemoteAddr, err)
	}
	respBuf := h.responseBody(command, result, err)
	if svrLog.TraceEnabled() {
		svrLog.Tracef("Response XML: %s", respBuf)
	}

	// send response
	resp.Header().Set("Content-Type", "text/xml; charset=utf-8")
	resp.Header().Set("Content-Length", strconv.Itoa(len(respBuf)))
	_, err = resp.Write([]byte(respBuf))
	if err != nil {
		svrLog.Warningf("Sending of response for %s failed: %v", req.RemoteAddr, err)
	}
}

func (h *Handler) authorized(req *http.Request, input *record.Record) bool {
	if h.AuthToken == "" {
		return true
	}
	if req.Header.Get(HeaderIAFToken) == h.AuthToken {
		return true
	}
	return input.Path("RequesterCredentials.eBayAuthToken").String() == h.AuthToken
}

func (h *Handler) responseBody(command string, result interface{}, err error) string {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	ack := AckSuccess
	var details []ErrorDetail
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			ack = apiErr.Ack
			if ack == "" {
				ack = AckFailure
			}
			details = apiErr.Errors
		} else {
			ack = AckFailure
			details = []ErrorDetail{{
				ShortMessage:        err.Error(),
				LongMessage:         err.Error(),
				ErrorCode:           "-1",
				SeverityCode:        SeverityError,
				ErrorClassification: "RequestError",
			}}
		}
	}

	head := Mapping{
		M("Timestamp", now()),
		M("Ack", ack),
	}
	if len(details) > 0 {
		errs := make(Sequence, len(details))
		for i, d := range details {
			errs[i] = Mapping{
				M("ShortMessage", escape(d.ShortMessage)),
				M("LongMessage", escape(d.LongMessage)),
				M("ErrorCode", escape(d.ErrorCode)),
				M("SeverityCode", escape(d.SeverityCode)),
				M("ErrorClassification", escape(d.ErrorClassification)),
			}
		}
		head = append(head, Member{Name: "Errors", Value: errs})
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString("<" + command + `Response xmlns="` + Namespace + `">`)
	b.WriteString(Serialize(head, result))
	b.WriteString("</" + command + "Response>")
	return b.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	// writing to a bytes.Buffer does not fail
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

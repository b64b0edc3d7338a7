package xmlapi

import (
	"fmt"
	"sync"

	"github.com/mdzio/go-ebay/record"
)

// Dispatcher dispatches a received call to registered handlers.
type Dispatcher interface {
	AddDefaultMethods()
	Handle(command string, m Method)
	HandleFunc(command string, f func(*record.Record) (interface{}, error))
	HandleUnknownFunc(f func(string, *record.Record) (interface{}, error))
	Dispatch(command string, input *record.Record) (interface{}, error)
}

// A Method is dispatched from a Handler. The argument is the request body.
// The result is rendered with NewValue into the response body.
type Method interface {
	Call(*record.Record) (interface{}, error)
}

// MethodFunc is an adapter to use ordinary functions as Method's.
type MethodFunc func(*record.Record) (interface{}, error)

// Call implements interface Method.
func (m MethodFunc) Call(input *record.Record) (interface{}, error) {
	return m(input)
}

// BasicDispatcher dispatches a call to a registered function.
type BasicDispatcher struct {
	mutex   sync.RWMutex
	methods map[string]Method
	unknown func(string, *record.Record) (interface{}, error)
}

// Handle registers a Method.
func (d *BasicDispatcher) Handle(command string, m Method) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.methods == nil {
		d.methods = make(map[string]Method)
	}
	d.methods[command] = m
}

// HandleFunc registers an ordinary function as Method.
func (d *BasicDispatcher) HandleFunc(command string, f func(*record.Record) (interface{}, error)) {
	d.Handle(command, MethodFunc(f))
}

// HandleUnknownFunc registers an ordinary function to handle unknown calls.
func (d *BasicDispatcher) HandleUnknownFunc(f func(string, *record.Record) (interface{}, error)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.unknown = f
}

// AddDefaultMethods adds GeteBayOfficialTime. The handler adds the
// timestamp itself.
func (d *BasicDispatcher) AddDefaultMethods() {
	d.HandleFunc(
		"GeteBayOfficialTime",
		func(*record.Record) (interface{}, error) {
			svrLog.Debug("Call of GeteBayOfficialTime received")
			return nil, nil
		},
	)
}

// Dispatch dispatches a call to a registered function.
func (d *BasicDispatcher) Dispatch(command string, input *record.Record) (interface{}, error) {
	d.mutex.RLock()
	method, ok := d.methods[command]
	unknown := d.unknown
	d.mutex.RUnlock()

	if !ok {
		if unknown == nil {
			unknown = func(name string, _ *record.Record) (interface{}, error) {
				return nil, &APIError{
					Command: name,
					Ack:     AckFailure,
					Errors: []ErrorDetail{{
						ShortMessage:        "Unsupported API call.",
						LongMessage:         fmt.Sprintf("The API call %s is invalid or not supported in this release.", name),
						ErrorCode:           "2",
						SeverityCode:        SeverityError,
						ErrorClassification: "RequestError",
					}},
				}
			}
		}
		return unknown(command, input)
	}
	return method.Call(input)
}

package api

import (
	"errors"
	"fmt"
)

// Status is the outcome class carried by every backend ActionResult
type Status string

const (
	StatusOK              Status = "OK"
	StatusCreated         Status = "CREATED"
	StatusAccepted        Status = "ACCEPTED"
	StatusNoContent       Status = "NOCONTENT"
	StatusPartial         Status = "PARTIAL"
	StatusBadRequest      Status = "BADREQUEST"
	StatusNotFound        Status = "NOTFOUND"
	StatusForbidden       Status = "FORBIDDEN"
	StatusTeapot          Status = "TEAPOT"
	StatusTooEarly        Status = "TOO_EARLY"
	StatusTooManyRequests Status = "TOO_MANY_REQUESTS"
	StatusUnknown         Status = "UNKNOWN"
)

// Message keys synthesized locally. They are looked up in the UI string table.
const (
	MsgBackendTimeout  = "backendTimeout"
	MsgUnknownError    = "unknownError"
	MsgRequestCanceled = "requestCanceled"
	MsgInvalidRequest  = "invalidRequest"
)

var statusCodes = map[Status]int{
	StatusOK: 200, StatusCreated: 201, StatusAccepted: 202, StatusNoContent: 204,
	StatusPartial: 206, StatusBadRequest: 400, StatusForbidden: 403, StatusNotFound: 404,
	StatusTeapot: 418, StatusTooEarly: 425, StatusTooManyRequests: 429, StatusUnknown: 300,
}

// HTTPCode returns the HTTP status the backend pairs with s, 0 when s is not
// part of the enumeration.
func (s Status) HTTPCode() int {
	return statusCodes[s]
}

// Known reports whether s belongs to the fixed status enumeration
func (s Status) Known() bool {
	_, ok := statusCodes[s]
	return ok
}

// ActionResult is the uniform outcome envelope returned by the backend and
// synthesized locally on transport failure. It doubles as the error type of
// every client operation in this module.
type ActionResult struct {
	Status     Status `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// NewActionResult creates a new ActionResult
func NewActionResult(status Status, code int, message string) *ActionResult {
	return &ActionResult{Status: status, StatusCode: code, Message: message}
}

// Error implements the error interface
func (r *ActionResult) Error() string {
	return fmt.Sprintf("[%s/%d] %s", r.Status, r.StatusCode, r.Message)
}

// Local reports whether the result was synthesized client side rather than
// returned by the backend.
func (r *ActionResult) Local() bool {
	return r.StatusCode == 0
}

// Common synthesized results
func errBackendTimeout() *ActionResult {
	return NewActionResult(StatusUnknown, 0, MsgBackendTimeout)
}

func errUnknown() *ActionResult {
	return NewActionResult(StatusUnknown, 0, MsgUnknownError)
}

func errCanceled() *ActionResult {
	return NewActionResult(StatusUnknown, 0, MsgRequestCanceled)
}

func errInvalidRequest() *ActionResult {
	return NewActionResult(StatusBadRequest, 400, MsgInvalidRequest)
}

// AsActionResult extracts the ActionResult from err. Any other error is
// normalized to the unknownError result so callers always get a shaped value.
func AsActionResult(err error) *ActionResult {
	if err == nil {
		return nil
	}
	var ar *ActionResult
	if errors.As(err, &ar) {
		return ar
	}
	return errUnknown()
}

// IsStatus reports whether err is an ActionResult with the given status
func IsStatus(err error, status Status) bool {
	var ar *ActionResult
	return errors.As(err, &ar) && ar.Status == status
}

package login

import (
	"errors"
	"net/http"
)

// ===== Error taxonomy =====

// Authentication errors form a closed set. Every failure an attempt can
// produce is one of these values; the manager and authenticators never
// surface anything outside it through a completion callback.
var (
	// ErrAccessDenied indicates the rider declined the authorization request.
	ErrAccessDenied = errors.New("access denied")
	// ErrUnavailable indicates the authentication medium cannot be used,
	// typically because the rider app is not installed. From a native attempt
	// this triggers fallback rather than reaching the caller.
	ErrUnavailable = errors.New("authentication medium unavailable")
	// ErrInvalidResponse indicates a redirect or navigation that could not be
	// interpreted: missing token, mismatched state, unparseable payload.
	ErrInvalidResponse = errors.New("invalid authentication response")
	// ErrMalformedRequest indicates the provider rejected the request as
	// malformed, usually a bad client ID or redirect URI.
	ErrMalformedRequest = errors.New("malformed authentication request")
	// ErrNetwork indicates a transport failure, including a failed code
	// exchange.
	ErrNetwork = errors.New("network error during authentication")
	// ErrServer indicates the provider failed internally.
	ErrServer = errors.New("authentication server error")
	// ErrInvalidScope indicates a requested scope was rejected.
	ErrInvalidScope = errors.New("invalid scope requested")
	// ErrCancelled indicates the rider dismissed the flow before completing
	// it, or the attempt was abandoned on app resume.
	ErrCancelled = errors.New("authentication cancelled")
)

// ClassifyRedirectError maps the error parameter of a redirect or deep-link
// response onto the taxonomy. It is pure and stable: the same input always
// yields the same error. An empty parameter yields nil; an unrecognized one
// yields ErrInvalidResponse.
func ClassifyRedirectError(param string) error {
	switch param {
	case "":
		return nil
	case "access_denied", "unauthorized":
		return ErrAccessDenied
	case "unavailable":
		return ErrUnavailable
	case "invalid_response":
		return ErrInvalidResponse
	case "invalid_request", "invalid_client", "invalid_redirect", "mismatching_redirect":
		return ErrMalformedRequest
	case "invalid_scope":
		return ErrInvalidScope
	case "server_error", "internal_server_error", "temporarily_unavailable":
		return ErrServer
	case "cancelled":
		return ErrCancelled
	default:
		return ErrInvalidResponse
	}
}

// ClassifyHTTPStatus maps an HTTP status code from a token or exchange request
// onto the taxonomy. Successful statuses yield nil.
func ClassifyHTTPStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrAccessDenied
	case code == http.StatusBadRequest:
		return ErrMalformedRequest
	case code >= 500:
		return ErrServer
	default:
		return ErrNetwork
	}
}

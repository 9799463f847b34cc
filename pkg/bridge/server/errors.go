package server

import "net/http"

type errKind int

const (
	// kindInput covers malformed caller input: bad shop domain, missing code.
	kindInput errKind = iota
	// kindAuth covers invalid, expired, or replayed state tokens and
	// signature mismatches. Never retried automatically; the user restarts
	// from the install endpoint.
	kindAuth
	// kindUpstream covers exchange endpoint failures and malformed exchange
	// responses. Surfaced generically, logged in full.
	kindUpstream
	// kindInternal covers local faults such as rng failure.
	kindInternal
)

// flowError carries an error through a flow gate together with the HTTP
// status and the message safe to show the caller.
type flowError struct {
	kind errKind
	err  error
}

func (e *flowError) Error() string { return e.err.Error() }
func (e *flowError) Unwrap() error { return e.err }

func inputErr(err error) *flowError    { return &flowError{kind: kindInput, err: err} }
func authErr(err error) *flowError     { return &flowError{kind: kindAuth, err: err} }
func upstreamErr(err error) *flowError { return &flowError{kind: kindUpstream, err: err} }
func internalErr(err error) *flowError { return &flowError{kind: kindInternal, err: err} }

func (e *flowError) status() int {
	switch e.kind {
	case kindInput, kindAuth:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// public is the response body. Upstream and internal detail never reaches
// the caller.
func (e *flowError) public() string {
	switch e.kind {
	case kindInput:
		return "Bad Request"
	case kindAuth:
		return "Unauthorized request, please restart the install flow"
	default:
		return "Internal Server Error"
	}
}

func (e *flowError) kindLabel() string {
	switch e.kind {
	case kindInput:
		return "input"
	case kindAuth:
		return "auth"
	case kindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

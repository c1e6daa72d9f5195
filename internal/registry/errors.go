package registry

import "errors"

// Generic messages shown when the server gives nothing better.
const (
	MsgListFailed   = "failed to fetch client list"
	MsgCreateFailed = "failed to create client"
)

// ErrAnonymousCaller is returned before any request is sent when the caller
// carries no user id.
var ErrAnonymousCaller = errors.New("registry: caller has no user id")

// FetchFailure is a failed List: a transport error, a non-2xx status or an
// undecodable body. The server's error body is never consulted.
type FetchFailure struct {
	StatusCode int
	Err        error
}

func (e *FetchFailure) Error() string {
	if e.Err != nil {
		return MsgListFailed + ": " + e.Err.Error()
	}
	return MsgListFailed
}

func (e *FetchFailure) Unwrap() error { return e.Err }

// CreateFailure is a failed Create. Detail holds the server-provided message
// when the error body carried one.
type CreateFailure struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *CreateFailure) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return e.Err.Error()
	default:
		return MsgCreateFailed
	}
}

func (e *CreateFailure) Unwrap() error { return e.Err }

// Package upstream holds the error vocabulary shared by the remote service
// clients. A transport failure (request never completed) surfaces as the
// raw error from net/http; a semantic rejection (the service answered
// success=false) surfaces as a RejectedError carrying the server-provided
// text verbatim.
package upstream

type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "remote service rejected the request"
	}
	return e.Message
}

// internal/mailer/mailer.go
//
// Outbound mail with request-scoped URL options.
//
// Context
// -------
// Emails triggered during a request (password resets, notifications) must
// build absolute links that match the host the visitor used.  Instead of
// mutating a process-wide default, each request derives an explicit
// URLOptions value and passes it to the mailer; concurrent requests for
// different accounts can no longer race over a shared host setting.
//
// Delivery itself is queue-shaped: EnqueueEmail hands the message to a log
// sink today and a broker later.  Callers treat enqueue failures as
// non-fatal.
package mailer

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

//
// URL options
//

// URLOptions carries everything needed to build absolute URLs for one
// request.  Derived once from the inbound request; never stored globally.
type URLOptions struct {
	Scheme string // "http" or "https"
	Host   string // host[:port] exactly as the visitor sent it
}

// OptionsFromRequest derives URLOptions from the request's transport and
// Host header.
func OptionsFromRequest(r *http.Request) URLOptions {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return URLOptions{Scheme: scheme, Host: r.Host}
}

// AbsoluteURL joins path onto the options' origin.
func (o URLOptions) AbsoluteURL(path string) string {
	if len(path) == 0 || path[0] != '/' {
		path = "/" + path
	}
	return o.Scheme + "://" + o.Host + path
}

//
// Outbound email
//

// Email represents a basic outbound email job.
type Email struct {
	To      []string
	Subject string
	Text    string
	HTML    string // optional
}

// EnqueueEmail logs the email payload.  Swap with a real queue publisher
// when delivery infrastructure lands.
func EnqueueEmail(ctx context.Context, opts URLOptions, msg Email) error {
	zap.S().Infow("queue email",
		"to", msg.To,
		"subject", msg.Subject,
		"origin", opts.Scheme+"://"+opts.Host,
		"len_text", len(msg.Text),
	)
	return nil
}

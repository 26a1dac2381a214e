// Package notify is the outbound notification boundary.  Dispatch is
// synchronous and unacknowledged: the workflow composes a Message, hands it
// to the Notifier, and treats a dispatch error as a non-fatal warning.
package notify

import "context"

// Message is one outbound notification.  LinkPage/LinkText describe an
// optional deep link into the hosting UI (e.g. the review dashboard or the
// caller's own request history); the transport decides how to render it.
type Message struct {
	ID         string   `json:"id"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	LinkPage   string   `json:"link_page,omitempty"`
	LinkText   string   `json:"link_text,omitempty"`
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

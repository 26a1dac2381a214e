// Package nats publishes notifications to a NATS subject for an external
// mailer to deliver.  Publish is synchronous with no retry; a failed publish
// surfaces as a warning on an otherwise successful operation.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/cwhuang-tw/camreview/internal/camreview/notify"
)

// payload is the wire form consumed by the mailer.  Link is pre-assembled
// here so the mailer stays ignorant of this service's URL layout.
type payload struct {
	ID         string   `json:"id"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	LinkURL    string   `json:"link_url,omitempty"`
	LinkText   string   `json:"link_text,omitempty"`
}

type Publisher struct {
	conn    *nats.Conn
	subject string
	baseURL string
}

// NewPublisher connects to url and publishes every message to subject.
// baseURL is the externally reachable root of the hosting UI, used to build
// deep links.
func NewPublisher(url, subject, baseURL string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: conn, subject: subject, baseURL: baseURL}, nil
}

func (p *Publisher) Send(_ context.Context, msg notify.Message) error {
	out := payload{
		ID:         msg.ID,
		Recipients: msg.Recipients,
		Subject:    msg.Subject,
		Body:       msg.Body,
		LinkText:   msg.LinkText,
	}
	if msg.LinkPage != "" && p.baseURL != "" {
		out.LinkURL = fmt.Sprintf("%s?page=%s", p.baseURL, msg.LinkPage)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", msg.ID, err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish notification %s: %w", msg.ID, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.conn.Close()
}

package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/cwhuang-tw/camreview/internal/camreview/notify"
)

// Notifier captures messages in memory.  Test-only double.
type Notifier struct {
	mu       sync.Mutex
	messages []notify.Message
	fail     bool
}

func New() *Notifier {
	return &Notifier{}
}

// SetFail makes every subsequent Send fail when v is true.
func (n *Notifier) SetFail(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fail = v
}

func (n *Notifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("dispatch failed")
	}
	n.messages = append(n.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (n *Notifier) Messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Message, len(n.messages))
	copy(out, n.messages)
	return out
}

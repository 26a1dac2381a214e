package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes notifications to the log instead of dispatching them.
// Used in dev when no broker is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.logger.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"recipients": msg.Recipients,
		"subject":    msg.Subject,
		"link_page":  msg.LinkPage,
	}).Info("notification (log only)")
	return nil
}

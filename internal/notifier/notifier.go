// Package notifier pushes committed notifications to the recipient's open streams.
package notifier

import (
	"context"

	"github.com/anonto42/groupnet/backend/internal/models"
	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/anonto42/groupnet/backend/pkg/sse"
)

// EventNotification is the SSE event name carrying a models.NotificationView.
const EventNotification = "notification"

type Notifier struct {
	pub sse.Publisher
}

var _ repositories.CommitHook = (*Notifier)(nil)

func New(pub sse.Publisher) *Notifier {
	return &Notifier{pub: pub}
}

// AfterCommit publishes every notification the transaction inserted.
func (n *Notifier) AfterCommit(_ context.Context, changes repositories.Changeset) {
	for _, e := range changes.Added {
		if note, ok := e.(*models.Notification); ok {
			n.pub.Publish(note.UserID, sse.Event{Type: EventNotification, Data: note.View()})
		}
	}
}

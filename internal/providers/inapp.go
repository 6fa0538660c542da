package providers

import (
	"context"

	"notification-center/internal/models"
	"notification-center/internal/ws"
)

// InApp pushes notifications to the user's live WebSocket sessions. Having no
// session open is not a failure: the record is in the feed and the next poll
// picks it up.
type InApp struct {
	hub *ws.Hub
}

func NewInApp(hub *ws.Hub) *InApp {
	return &InApp{hub: hub}
}

func (i *InApp) Send(_ context.Context, n models.Notification, _ string) error {
	i.hub.Push(n.RecipientID, n)
	return nil
}

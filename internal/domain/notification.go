package domain

import "time"

type NotificationType string

const (
	// NotificationConnectionRequest tells a party a relationship was created.
	NotificationConnectionRequest NotificationType = "connection_request"

	// NotificationConnectionEnded tells the other party a relationship ended.
	NotificationConnectionEnded NotificationType = "connection_ended"
)

// Notification is an outbox row consumed by the delivery subsystem. This
// service only produces the payload; delivery guarantees belong elsewhere.
// CounterpartID is set for connection_request, RelationshipID for
// connection_ended.
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType

	CounterpartID  string
	RelationshipID string

	CreatedAt   time.Time
	DeliveredAt *time.Time
}

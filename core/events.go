package core

import "context"

// Domain event topics (prefixed with KafkaConfig.TopicPrefix when published to Kafka).
const (
	TopicStaffCreated        = "staff.created"
	TopicStudentCreated      = "student.created"
	TopicParentCreated       = "parent.created"
	TopicFeePaymentRecorded  = "fee.payment_recorded"
	TopicNotificationCreated = "notification.created"
)

// EventPublisher publishes domain events. Publishing is best effort: callers log failures
// but never fail the originating request because of them.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Event change kinds, combined with the resource type name and the
// "Notification" suffix to form the full event type.
const (
	ChangeCreation       = "Creation"
	ChangeRemove         = "Remove"
	ChangeAttributeValue = "AttributeValueChange"
	ChangeState          = "StateChange"

	NotificationSuffix = "Notification"
)

// NewEventMessage builds the transient event envelope for a changed
// resource. The envelope holds the resource's current state (or the just
// deleted state) under the lower-camel resource type name.
func NewEventMessage(resourceType, eventType string, state Resource) Resource {
	return Resource{
		"eventId":   uuid.New().String(),
		"eventTime": time.Now().UTC().Format(time.RFC3339Nano),
		"eventType": eventType,
		"event": map[string]interface{}{
			LowerCamel(resourceType): map[string]interface{}(state),
		},
	}
}

// EventID returns the envelope's eventId, or "" when absent.
func (r Resource) EventID() string {
	if id, ok := r["eventId"].(string); ok {
		return id
	}
	return ""
}

// EventType returns the envelope's eventType, or "" when absent.
func (r Resource) EventType() string {
	if t, ok := r["eventType"].(string); ok {
		return t
	}
	return ""
}

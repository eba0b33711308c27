// Package events defines the change-event contract shared by the resource
// services: the enumerated topics, their payload schemas, and the publisher
// that puts them on the bus. Services other than the one that owns a resource
// learn about its state changes only through these events.
package events

import "github.com/iamEzaz/baribhara/internal/domain"

// Topic names a domain-event stream. Topics are an enumerated, compile-time
// contract; no service emits or consumes a topic string outside this set.
type Topic string

const (
	TopicUserCreated   Topic = "user.created"
	TopicUserUpdated   Topic = "user.updated"
	TopicUserDeleted   Topic = "user.deleted"
	TopicUserSuspended Topic = "user.suspended"
	TopicUserActivated Topic = "user.activated"

	TopicPropertyCreated Topic = "property.created"
	TopicPropertyUpdated Topic = "property.updated"
	TopicPropertyDeleted Topic = "property.deleted"

	TopicTenantCreated         Topic = "tenant.created"
	TopicTenantUpdated         Topic = "tenant.updated"
	TopicTenantDeleted         Topic = "tenant.deleted"
	TopicTenantVerified        Topic = "tenant.verified"
	TopicTenantPropertyAssign  Topic = "tenant.property_assigned"
	TopicTenantPropertyRemoved Topic = "tenant.property_removed"

	TopicCaretakerCreated   Topic = "caretaker.created"
	TopicCaretakerUpdated   Topic = "caretaker.updated"
	TopicCaretakerDeleted   Topic = "caretaker.deleted"
	TopicCaretakerVerified  Topic = "caretaker.verified"
	TopicCaretakerSuspended Topic = "caretaker.suspended"
	TopicCaretakerActivated Topic = "caretaker.activated"
)

// AllTopics lists every topic in a stable order, for consumers that subscribe
// to the full stream set.
func AllTopics() []Topic {
	return []Topic{
		TopicUserCreated, TopicUserUpdated, TopicUserDeleted, TopicUserSuspended, TopicUserActivated,
		TopicPropertyCreated, TopicPropertyUpdated, TopicPropertyDeleted,
		TopicTenantCreated, TopicTenantUpdated, TopicTenantDeleted, TopicTenantVerified,
		TopicTenantPropertyAssign, TopicTenantPropertyRemoved,
		TopicCaretakerCreated, TopicCaretakerUpdated, TopicCaretakerDeleted,
		TopicCaretakerVerified, TopicCaretakerSuspended, TopicCaretakerActivated,
	}
}

// Payload is a typed event body. EventKey returns the identifier of the
// resource the event is about; it becomes the message key on the bus.
type Payload interface {
	EventKey() string
}

// UserEvent is the payload for user.* topics
type UserEvent struct {
	UserID      string            `json:"userId"`
	PhoneNumber string            `json:"phoneNumber,omitempty"`
	Email       string            `json:"email,omitempty"`
	Changes     *domain.UserPatch `json:"changes,omitempty"`
}

func (e UserEvent) EventKey() string { return e.UserID }

// PropertyEvent is the payload for property.* topics
type PropertyEvent struct {
	PropertyID  string                `json:"propertyId"`
	CaretakerID string                `json:"caretakerId,omitempty"`
	Type        string                `json:"type,omitempty"`
	Changes     *domain.PropertyPatch `json:"changes,omitempty"`
}

func (e PropertyEvent) EventKey() string { return e.PropertyID }

// TenantEvent is the payload for tenant.* topics
type TenantEvent struct {
	TenantID    string              `json:"tenantId"`
	UserID      string              `json:"userId,omitempty"`
	PropertyID  string              `json:"propertyId,omitempty"`
	CaretakerID string              `json:"caretakerId,omitempty"`
	Type        string              `json:"type,omitempty"`
	Changes     *domain.TenantPatch `json:"changes,omitempty"`
}

func (e TenantEvent) EventKey() string { return e.TenantID }

// CaretakerEvent is the payload for caretaker.* topics
type CaretakerEvent struct {
	CaretakerID string                 `json:"caretakerId"`
	UserID      string                 `json:"userId,omitempty"`
	Type        string                 `json:"type,omitempty"`
	Changes     *domain.CaretakerPatch `json:"changes,omitempty"`
}

func (e CaretakerEvent) EventKey() string { return e.CaretakerID }

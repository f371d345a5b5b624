package models

import "time"

// Actor reference kinds. Older rows stored a free-text name or email in
// updated_by; newer rows store a stable user id. Both shapes are normalized
// into a tagged ActorRef at the repository boundary.
const (
	ActorKindID         = "actor-id"
	ActorKindLegacyName = "legacy-name"
)

// ActorRef identifies who (or what) last touched a customer row.
type ActorRef struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Customer is a tracked customer with its document counters.
// Total is derived from the stored counters on every read and is never
// persisted; a stored total is not trusted.
type Customer struct {
	ID             string    `json:"id" gorm:"primaryKey;size:64"`
	Name           string    `json:"name" gorm:"not null"`
	InProcess      int       `json:"inProcess" gorm:"column:in_process;not null"`
	Other          int       `json:"other" gorm:"not null"`
	Inbox          int       `json:"inbox" gorm:"not null"`
	Total          int       `json:"total" gorm:"-"`
	Active         bool      `json:"active" gorm:"not null;index"`
	AdminMail      string    `json:"adminMail,omitempty"`
	Source         string    `json:"source,omitempty"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
	UpdatedByKind  string    `json:"-"`
	UpdatedByValue string    `json:"-"`
	UpdatedBy      *ActorRef `json:"updatedBy,omitempty" gorm:"-"`
}

// Normalize recomputes the derived total and lifts the stored updated-by
// columns into the tagged ActorRef form. Rows written before actor ids
// existed carry a bare name; those come back as legacy-name.
func (c *Customer) Normalize() {
	c.Total = c.InProcess + c.Other + c.Inbox
	if c.UpdatedByValue == "" {
		c.UpdatedBy = nil
		return
	}
	kind := c.UpdatedByKind
	if kind != ActorKindID {
		kind = ActorKindLegacyName
	}
	c.UpdatedBy = &ActorRef{Kind: kind, Value: c.UpdatedByValue}
}

// CreateCustomerRequest is the payload for creating a customer
type CreateCustomerRequest struct {
	ID         string `json:"id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Active     bool   `json:"active"`
	AdminMail  string `json:"adminMail"`
	Source     string `json:"source"`
	SourceRoot string `json:"sourceRoot"`
}

// UpdateCustomerRequest is the payload for updating a customer's mutable fields
type UpdateCustomerRequest struct {
	Name       string  `json:"name"`
	InProcess  *int    `json:"inProcess"`
	Other      *int    `json:"other"`
	Inbox      *int    `json:"inbox"`
	Active     *bool   `json:"active"`
	AdminMail  *string `json:"adminMail"`
	Source     *string `json:"source"`
	SourceRoot *string `json:"sourceRoot"`
}

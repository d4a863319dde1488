package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title       string    `gorm:"not null;uniqueIndex:idx_organizer_event" json:"title"`
	Description string    `json:"description"`
	Location    string    `gorm:"not null" json:"location"`
	Category    string    `gorm:"not null;uniqueIndex:idx_organizer_event" json:"category"`
	Date        string    `gorm:"not null;uniqueIndex:idx_organizer_event" json:"date"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Image       string    `json:"image"`
	Status      string    `gorm:"not null;default:'pending'" json:"status"`
	IsUpcoming  bool      `gorm:"not null;default:false" json:"isUpcoming"`
	OrganizerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_organizer_event" json:"organizerId"`
	Organizer   *User     `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`

	// Users denied visibility and registration for this event,
	// independent of the global account block flag.
	BlockedUsers []User `gorm:"many2many:event_blocked_users;" json:"blockedUsers,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ValidStatus(status string) bool {
	return status == StatusPending || status == StatusApproved || status == StatusRejected
}

// HasBlockedUser reports whether the given user appears in the event's
// block list. BlockedUsers must be preloaded.
func (event *Event) HasBlockedUser(userID uuid.UUID) bool {
	for _, u := range event.BlockedUsers {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

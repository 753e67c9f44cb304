package models

import "time"

const (
	PrefSelectedPrinter = "selected_printer"
	PrefServerURL       = "server_url"
	PrefAuthToken       = "auth_token"
	PrefUser            = "user"
	PrefRestaurant      = "restaurant"
	PrefSessionExpiry   = "session_expires_at"
)

// Preference is a single locally persisted key/value setting of the desk.
type Preference struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"not null"`
}

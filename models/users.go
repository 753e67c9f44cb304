package models

import "time"

// User is the logged-in staff member as returned by the backend login endpoint.
type User struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	RestaurantID string `json:"restaurantId"`
}

type Restaurant struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Session -> cached login of the desk; token is the backend bearer token
type Session struct {
	Token      string     `json:"token"`
	User       User       `json:"user"`
	Restaurant Restaurant `json:"restaurant"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

func (s Session) IsZero() bool {
	return s.Token == ""
}

// Expired -> tokens without an exp claim never expire locally
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

package database

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/yeremiapane/cashier-desk/models"
	"github.com/yeremiapane/cashier-desk/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceStore keeps the desk's local settings and cached login in one key/value table.
// Reads never fail: a missing or unreadable value comes back as its zero value.
type PreferenceStore struct {
	db *gorm.DB
}

func NewPreferenceStore(db *gorm.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Migrate -> create the preferences table
func (s *PreferenceStore) Migrate() error {
	return s.db.AutoMigrate(&models.Preference{})
}

// Get -> stored value, "" when missing
func (s *PreferenceStore) Get(key string) string {
	var pref models.Preference
	err := s.db.Where("`key` = ?", key).First(&pref).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorLogger.WithError(err).WithField("key", key).Error("Error reading preference")
		}
		return ""
	}
	return pref.Value
}

// Set upserts key.
func (s *PreferenceStore) Set(key, value string) error {
	pref := models.Preference{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
}

func (s *PreferenceStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Where("`key` IN ?", keys).Delete(&models.Preference{}).Error
}

func (s *PreferenceStore) SelectedPrinter() string {
	return s.Get(models.PrefSelectedPrinter)
}

func (s *PreferenceStore) SetSelectedPrinter(name string) error {
	return s.Set(models.PrefSelectedPrinter, strings.TrimSpace(name))
}

// ServerURL -> backend base url override, "" when unset
func (s *PreferenceStore) ServerURL() string {
	return s.Get(models.PrefServerURL)
}

func (s *PreferenceStore) SetServerURL(url string) error {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return s.Delete(models.PrefServerURL)
	}
	return s.Set(models.PrefServerURL, url)
}

// Session -> cached login; false when no token is stored
func (s *PreferenceStore) Session() (models.Session, bool) {
	token := s.Get(models.PrefAuthToken)
	if token == "" {
		return models.Session{}, false
	}
	session := models.Session{Token: token}
	decodeLenient(s.Get(models.PrefUser), &session.User)
	decodeLenient(s.Get(models.PrefRestaurant), &session.Restaurant)
	if raw := s.Get(models.PrefSessionExpiry); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			session.ExpiresAt = &t
		}
	}
	return session, true
}

func (s *PreferenceStore) SaveSession(session models.Session) error {
	user, err := json.Marshal(session.User)
	if err != nil {
		return err
	}
	restaurant, err := json.Marshal(session.Restaurant)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		store := NewPreferenceStore(tx)
		if err := store.Set(models.PrefAuthToken, session.Token); err != nil {
			return err
		}
		if err := store.Set(models.PrefUser, string(user)); err != nil {
			return err
		}
		if err := store.Set(models.PrefRestaurant, string(restaurant)); err != nil {
			return err
		}
		if session.ExpiresAt == nil {
			return store.Delete(models.PrefSessionExpiry)
		}
		return store.Set(models.PrefSessionExpiry, session.ExpiresAt.UTC().Format(time.RFC3339))
	})
}

// ClearSession removes the token and cached identity but keeps printer and server settings.
func (s *PreferenceStore) ClearSession() error {
	return s.Delete(models.PrefAuthToken, models.PrefUser, models.PrefRestaurant, models.PrefSessionExpiry)
}

func decodeLenient(raw string, dst interface{}) {
	if raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		utils.InfoLogger.WithError(err).Debug("Ignoring unreadable preference value")
	}
}

package permissions

import (
	"errors"

	"github.com/Strum355/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	ErrAlreadyBanned = errors.New("user is already banned")
	ErrNotBanned     = errors.New("user is not banned")
)

// BannedUser is a single deny-list entry. Banned users cannot invoke
// commands or press panel buttons.
type BannedUser struct {
	UserID string `gorm:"primaryKey;column:user_id"`
}

func (BannedUser) TableName() string {
	return "banlist"
}

// Store persists the deny list.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ban adds a user to the deny list.
func (s *Store) Ban(userID string) error {
	if s.IsBanned(userID) {
		return ErrAlreadyBanned
	}
	return s.db.Create(&BannedUser{UserID: userID}).Error
}

// Unban removes a user from the deny list.
func (s *Store) Unban(userID string) error {
	if !s.IsBanned(userID) {
		return ErrNotBanned
	}
	return s.db.Delete(&BannedUser{UserID: userID}).Error
}

// IsBanned reports whether a user is on the deny list. Lookup failures are
// treated as not banned so a database outage doesn't lock everyone out.
func (s *Store) IsBanned(userID string) bool {
	var entry BannedUser
	err := s.db.First(&entry, "user_id = ?", userID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).WithFields(log.Fields{"user_id": userID}).Error("Failed to query banlist")
		}
		return false
	}
	return true
}

// IsOwner reports whether a user is the configured bot owner. The owner
// bypasses the deny list so they can never lock themselves out.
func IsOwner(userID string) bool {
	owner := viper.GetString("discord.owner.id")
	return owner != "" && userID == owner
}

package favorites

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNoFavorite = errors.New("user has no favorite song")

// FavoriteSong maps a user to the one song the bot plays for them when they
// join a voice channel.
type FavoriteSong struct {
	UserID string `gorm:"primaryKey;column:user_id"`
	URL    string `gorm:"column:song"`
}

func (FavoriteSong) TableName() string {
	return "users_favorite_songs"
}

// Store persists per-user favorite songs.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Set records a user's favorite song, replacing any previous one. It returns
// the previous URL, or "" if the user had none.
func (s *Store) Set(userID, url string) (string, error) {
	previous, err := s.Get(userID)
	if err != nil && !errors.Is(err, ErrNoFavorite) {
		return "", err
	}
	if previous != "" {
		if err := s.db.Delete(&FavoriteSong{UserID: userID}).Error; err != nil {
			return "", err
		}
	}
	if err := s.db.Create(&FavoriteSong{UserID: userID, URL: url}).Error; err != nil {
		return "", err
	}
	return previous, nil
}

// Remove deletes a user's favorite song.
func (s *Store) Remove(userID string) error {
	if _, err := s.Get(userID); err != nil {
		return err
	}
	return s.db.Delete(&FavoriteSong{UserID: userID}).Error
}

// Get returns a user's favorite song URL.
func (s *Store) Get(userID string) (string, error) {
	var entry FavoriteSong
	err := s.db.First(&entry, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoFavorite
		}
		return "", err
	}
	return entry.URL, nil
}

// All lists every stored favorite.
func (s *Store) All() ([]FavoriteSong, error) {
	var entries []FavoriteSong
	if err := s.db.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

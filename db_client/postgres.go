package db_client

import (
	"time"

	"Aria/favorites"
	"Aria/permissions"

	"github.com/Strum355/log"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB *gorm.DB
)

func Init() {
	dsn := viper.GetString("postgres.dsn")

	var err error
	for i := 0; i < 10; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			sqlDB, _ := DB.DB()
			if pingErr := sqlDB.Ping(); pingErr == nil {
				break
			}
		}
		log.Info("Waiting for Postgres to be ready...")
		time.Sleep(time.Second)
	}
	if err != nil {
		log.WithError(err).Error("Unable to connect to database")
		return
	}

	if err := DB.AutoMigrate(&permissions.BannedUser{}, &favorites.FavoriteSong{}); err != nil {
		log.WithError(err).Error("Unable to migrate database schema")
	}
}

package database

import (
	"fmt"
	"log"
	"strconv"

	"teamcap/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

type SeedDefaults struct {
	PaceFactor         float64
	WorkingHoursPerDay float64
	WorkingDaysPerWeek int
}

func Init(dsn string, defaults SeedDefaults) error {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	// Auto migrate the schema
	err = DB.AutoMigrate(
		&models.User{},
		&models.Allocation{},
		&models.TimeOffRequest{},
		&models.Setting{},
	)
	if err != nil {
		return err
	}

	if err := seedDefaultAdmin(); err != nil {
		return err
	}
	if err := seedDefaultSettings(defaults); err != nil {
		return err
	}

	return nil
}

func seedDefaultAdmin() error {
	var count int64
	DB.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:           "admin",
		FullName:           "Administrator",
		PasswordHash:       string(hashedPassword),
		Role:               models.RoleAdmin,
		MustChangePassword: true,
	}

	result := DB.Create(&admin)
	if result.Error != nil {
		return result.Error
	}

	log.Println("Default admin user created (username: admin, password: admin)")
	return nil
}

func seedDefaultSettings(defaults SeedDefaults) error {
	seed := map[string]string{
		models.SettingPaceFactor:         strconv.FormatFloat(defaults.PaceFactor, 'f', -1, 64),
		models.SettingWorkingHoursPerDay: strconv.FormatFloat(defaults.WorkingHoursPerDay, 'f', -1, 64),
		models.SettingWorkingDaysPerWeek: strconv.Itoa(defaults.WorkingDaysPerWeek),
	}

	for key, value := range seed {
		var count int64
		DB.Model(&models.Setting{}).Where("key = ?", key).Count(&count)
		if count > 0 {
			continue
		}
		if err := DB.Create(&models.Setting{Key: key, Value: value}).Error; err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

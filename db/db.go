package db

import (
	"fmt"
	"log"
	"os"

	"schoolgear/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return conn
}

func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.EquipmentCategory{},
		&models.Equipment{},
		&models.LendingRequest{},
		&models.RepairLog{},
	); err != nil {
		return err
	}

	// Overdue scan walks only issued rows
	if err := conn.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_issued_due
	  ON %s (expected_return_date)
	  WHERE status = 'Issued';
	`, models.LendingRequestTable, models.LendingRequestTable)).Error; err != nil {
		return err
	}

	// Open repair logs are the common filter
	if err := conn.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open
	  ON %s (equipment_id)
	  WHERE repair_date IS NULL;
	`, models.RepairLogTable, models.RepairLogTable)).Error; err != nil {
		return err
	}

	return nil
}

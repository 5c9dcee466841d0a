package db

import (
	"fmt"
	"log"

	"github.com/clinicbook/clinic-app/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.User{},
		&models.DoctorProfile{},
		&models.PatientProfile{},
		&models.Appointment{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Patient is one row in the patients table. The primary key is never
// reused and date_of_joining/status are fixed at creation time; the
// update path must not touch them.
type Patient struct {
	PatientID        uint   `gorm:"primaryKey;autoIncrement;column:patient_id" json:"patient_id"`
	SSN              int64  `gorm:"column:ssn;unique;not null" json:"ssn"`
	Name             string `gorm:"column:name;not null" json:"name"`
	Address          string `gorm:"column:address;not null" json:"address"`
	Age              int    `gorm:"column:age;not null" json:"age"`
	DateOfJoining    string `gorm:"column:date_of_joining;type:varchar(10);not null" json:"date_of_joining"`
	RegistrationType string `gorm:"column:registration_type" json:"registration_type"`
	Status           int    `gorm:"column:status;default:1" json:"status"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SeedPatients inserts the sample patient rows if they are not present yet.
// Safe to run any number of times.
func SeedPatients(db *gorm.DB) error {
	today := time.Now().Format("2006-01-02")
	patients := []Patient{
		{SSN: 987412365, Name: "natsu", Address: "f-street-01, fiore", Age: 19, DateOfJoining: today, RegistrationType: "General", Status: 1},
		{SSN: 987412354, Name: "gray", Address: "f-street-16, fiore", Age: 19, DateOfJoining: today, RegistrationType: "General", Status: 1},
	}

	for _, patient := range patients {
		var existing Patient
		err := db.Where("ssn = ?", patient.SSN).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&patient).Error; err != nil {
			return err
		}
	}
	return nil
}

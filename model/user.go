package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// User is one staff credential row. Accounts are seed-only: no exposed
// operation creates, updates, or deletes a user.
type User struct {
	UserID       string `gorm:"primaryKey;column:user_id;type:varchar(16)" json:"user_id"`
	DisplayName  string `gorm:"column:display_name;not null" json:"display_name"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         string `gorm:"column:role;type:varchar(32);not null" json:"role"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SeedUser pairs a seed account with its plaintext password so callers
// can hash it with the digest function in use.
type SeedUser struct {
	UserID      string
	DisplayName string
	Password    string
	Role        string
}

// SeedAccounts is the fixed set of staff accounts the system bootstraps with:
// two Registration clerks, one Pharmacist, one Diagnostics operator.
var SeedAccounts = []SeedUser{
	{UserID: "RE0001", DisplayName: "reuser1", Password: "tcs_user1", Role: "Registration"},
	{UserID: "RE0002", DisplayName: "reuser2", Password: "tcs_user2", Role: "Registration"},
	{UserID: "PH0001", DisplayName: "phuser1", Password: "tcs_phuser1", Role: "Pharmacist"},
	{UserID: "DE0001", DisplayName: "deuser1", Password: "tcs_deuser1", Role: "Diagnostics"},
}

// SeedUsers inserts the fixed staff accounts if they do not exist yet,
// hashing each password with the provided digest function. Safe to run
// any number of times.
func SeedUsers(db *gorm.DB, hash func(string) string) error {
	for _, account := range SeedAccounts {
		var existing User
		err := db.Where("user_id = ?", account.UserID).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		user := User{
			UserID:       account.UserID,
			DisplayName:  account.DisplayName,
			PasswordHash: hash(account.Password),
			Role:         account.Role,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", account.UserID, err)
		}
	}
	return nil
}

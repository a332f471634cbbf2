package models

import "gorm.io/gorm"

// User is a devserver account. The agent itself never stores users; this
// model only backs the stub backend's login/signup endpoints.
type User struct {
	gorm.Model
	Name                  string `json:"name"`
	Email                 string `json:"email" gorm:"unique"`
	Password              string `json:"-"`
	IsOnboardingCompleted bool   `json:"is_onboarding_completed"`
}

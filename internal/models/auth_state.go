package models

// AuthState is the single persisted row holding the current bearer token and
// the signed-in user's email. Signed-in is derived: token non-empty.
type AuthState struct {
	ID    uint   `gorm:"primaryKey"`
	Token string `json:"-"`
	Email string `json:"email"`
}

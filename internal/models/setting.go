package models

// Setting is a small key/value row for values that must survive restarts
// outside the auth state, e.g. the generated device id.
type Setting struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `json:"value"`
}

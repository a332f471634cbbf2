package models

import "gorm.io/gorm"

// ReceivedLocation is what the devserver keeps for every uploaded sample,
// device metadata included, mirroring the backend's schema.
type ReceivedLocation struct {
	gorm.Model
	UserEmail        string   `json:"user_email" gorm:"index"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Accuracy         *float64 `json:"accuracy"`
	Altitude         *float64 `json:"altitude"`
	AltitudeAccuracy *float64 `json:"altitudeAccuracy"`
	Heading          *float64 `json:"heading"`
	Speed            *float64 `json:"speed"`
	DeviceID         string   `json:"deviceId"`
	DeviceName       string   `json:"deviceName"`
	DeviceModel      string   `json:"deviceModel"`
	DeviceBrand      string   `json:"deviceBrand"`
	OSName           string   `json:"osName"`
	OSVersion        string   `json:"osVersion"`
	AppVersion       string   `json:"appVersion"`
	Timestamp        string   `json:"timestamp"`       // formatted UTC string
	ClientTimestamp  int64    `json:"clientTimestamp"` // epoch ms
	IsBackground     bool     `json:"isBackground"`
}

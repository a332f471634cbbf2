package models

import (
	"gorm.io/gorm"
)

// LocationSample is one captured GPS fix. Rows are append-only: the only
// mutation ever applied is flipping Uploaded to true after the backend
// acknowledged the sample.
type LocationSample struct {
	gorm.Model
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Accuracy         *float64 `json:"accuracy"`         // meters
	Altitude         *float64 `json:"altitude"`         // meters
	AltitudeAccuracy *float64 `json:"altitudeAccuracy"` // meters
	Heading          *float64 `json:"heading"`          // degrees
	Speed            *float64 `json:"speed"`            // m/s
	CapturedAt       int64    `json:"clientTimestamp" gorm:"index"` // epoch milliseconds, UTC
	IsBackground     bool     `json:"isBackground"`
	Uploaded         bool     `json:"uploaded" gorm:"default:false;index"`
}

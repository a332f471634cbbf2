package device

import (
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"trackiq_agent/internal/config"
	"trackiq_agent/internal/models"
)

// AppVersion is stamped into every upload payload.
const AppVersion = "1.4.2"

// FallbackDeviceID is sent when a stable id cannot be read or persisted.
// Uploads must not fail over missing device identity.
const FallbackDeviceID = "unknown-device-id"

const deviceIDKey = "device_id"

// Info is the device metadata attached to every upload request.
type Info struct {
	DeviceID    string
	DeviceName  string
	DeviceModel string
	DeviceBrand string
	OSName      string
	OSVersion   string
	AppVersion  string
}

// Collect assembles device metadata. The device id is generated once and
// persisted in the settings table so it stays stable across restarts.
func Collect(db *gorm.DB, cfg config.Config) Info {
	name := cfg.DeviceName
	if name == "" {
		if host, err := os.Hostname(); err == nil {
			name = host
		} else {
			name = "unknown-host"
		}
	}

	return Info{
		DeviceID:    stableID(db),
		DeviceName:  name,
		DeviceModel: cfg.DeviceModel,
		DeviceBrand: cfg.DeviceBrand,
		OSName:      runtime.GOOS,
		OSVersion:   cfg.OSVersion,
		AppVersion:  AppVersion,
	}
}

func stableID(db *gorm.DB) string {
	var setting models.Setting
	err := db.First(&setting, "key = ?", deviceIDKey).Error
	if err == nil && setting.Value != "" {
		return setting.Value
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		logrus.WithError(err).Warn("Could not read persisted device id, using fallback.")
		return FallbackDeviceID
	}

	id := uuid.NewString()
	setting = models.Setting{Key: deviceIDKey, Value: id}
	if err := db.Create(&setting).Error; err != nil {
		logrus.WithError(err).Warn("Could not persist generated device id, using fallback.")
		return FallbackDeviceID
	}
	return id
}

package api

import (
	"time"

	"trackiq_agent/internal/device"
	"trackiq_agent/internal/models"
)

type loginRequest struct {
	EmailID  string `json:"email_id"`
	Password string `json:"password"`
}

type loginUser struct {
	Token                 string `json:"token"`
	Email                 string `json:"email"`
	IsOnboardingCompleted bool   `json:"is_onboarding_completed"`
	Message               string `json:"message"`
}

// loginResponse tolerates both backend generations: the current API wraps the
// payload under "in", the legacy one under "user". Same fields either way.
type loginResponse struct {
	In      *loginUser `json:"in"`
	User    *loginUser `json:"user"`
	Message string     `json:"message"`
	Status  int        `json:"status"`
}

// resolved returns whichever payload the server sent, preferring "in".
func (r *loginResponse) resolved() *loginUser {
	if r.In != nil {
		return r.In
	}
	return r.User
}

type uploadRequest struct {
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
	Timestamp        string   `json:"timestamp"`       // human-readable UTC string
	ClientTimestamp  int64    `json:"clientTimestamp"` // raw epoch ms
	IsBackground     bool     `json:"isBackground"`
}

type uploadBatchRequest struct {
	Items []uploadRequest `json:"items"`
}

type uploadResponse struct {
	Data *struct {
		Token string `json:"token"`
	} `json:"data"`
	Message string `json:"message"`
}

// utcTimestampLayout renders "August 28, 2026 at 3:04:05 PM UTC"; the backend
// schema wants this alongside the raw epoch milliseconds.
const utcTimestampLayout = "January 2, 2006 at 3:04:05 PM UTC"

func formatUTCTimestamp(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(utcTimestampLayout)
}

func toUploadRequest(sample models.LocationSample, dev device.Info) uploadRequest {
	return uploadRequest{
		Latitude:         sample.Latitude,
		Longitude:        sample.Longitude,
		Accuracy:         sample.Accuracy,
		Altitude:         sample.Altitude,
		AltitudeAccuracy: sample.AltitudeAccuracy,
		Heading:          sample.Heading,
		Speed:            sample.Speed,
		DeviceID:         dev.DeviceID,
		DeviceName:       dev.DeviceName,
		DeviceModel:      dev.DeviceModel,
		DeviceBrand:      dev.DeviceBrand,
		OSName:           dev.OSName,
		OSVersion:        dev.OSVersion,
		AppVersion:       dev.AppVersion,
		Timestamp:        formatUTCTimestamp(sample.CapturedAt),
		ClientTimestamp:  sample.CapturedAt,
		IsBackground:     sample.IsBackground,
	}
}

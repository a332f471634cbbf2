// Package controllers implements the agent's local control API: the Go
// counterpart of the mobile app's screens. It exposes status, the captured
// location list, login/logout, manual sync and a live websocket feed.
package controllers

import (
	"trackiq_agent/internal/api"
	"trackiq_agent/internal/capture"
	"trackiq_agent/internal/session"
	"trackiq_agent/internal/store"
	"trackiq_agent/internal/syncer"
)

// API bundles the agent components the handlers operate on.
type API struct {
	Store   *store.LocationStore
	Session *session.Store
	Syncer  *syncer.Orchestrator
	Client  *api.Client
	Loop    *capture.Loop
	Hub     *FeedHub

	// StartTracking and StopTracking wire the capture loop lifecycle; main
	// provides them because only it knows the position source.
	StartTracking func() error
	StopTracking  func()
}

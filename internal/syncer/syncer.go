// Package syncer drains the pending sample queue through the upload client
// and reacts to auth failures by tearing the session down.
package syncer

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"trackiq_agent/internal/api"
	"trackiq_agent/internal/device"
	"trackiq_agent/internal/session"
	"trackiq_agent/internal/store"
)

// Orchestrator coordinates uploads. All drains serialize on one mutex, so two
// concurrent SyncPending calls can never submit an overlapping pending set:
// the second caller re-reads the queue after the first finishes.
type Orchestrator struct {
	store   *store.LocationStore
	session *session.Store
	client  *api.Client
	device  device.Info

	mu sync.Mutex

	hookMu         sync.Mutex
	onUnauthorized func()
}

func New(st *store.LocationStore, sess *session.Store, client *api.Client, dev device.Info) *Orchestrator {
	return &Orchestrator{
		store:   st,
		session: sess,
		client:  client,
		device:  dev,
	}
}

// SetUnauthorizedHook registers the callback run after a forced logout,
// typically stopping the capture loop.
func (o *Orchestrator) SetUnauthorizedHook(fn func()) {
	o.hookMu.Lock()
	o.onUnauthorized = fn
	o.hookMu.Unlock()
}

// SyncPending drains the pending queue: nothing pending is a no-op, exactly
// one pending sample goes through the single-upload endpoint, more go as one
// batch. Safe to call from any goroutine and at any time.
func (o *Orchestrator) SyncPending(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	token := o.session.CurrentToken()
	if token == "" {
		return nil
	}

	pending, err := o.store.ListPending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(pending))
	for _, sample := range pending {
		ids = append(ids, sample.ID)
	}

	var result api.UploadResult
	if len(pending) == 1 {
		result = o.client.UploadOne(ctx, pending[0], token, o.device)
	} else {
		result = o.client.UploadBatch(ctx, pending, token, o.device)
	}

	return o.apply(result, ids)
}

// SyncSample uploads one just-captured sample if it is still pending. Errors
// are swallowed: the sample stays pending and the next trigger retries.
func (o *Orchestrator) SyncSample(ctx context.Context, id uint) {
	o.mu.Lock()
	defer o.mu.Unlock()

	token := o.session.CurrentToken()
	if token == "" {
		return
	}

	sample, err := o.store.PendingByID(id)
	if err != nil {
		logrus.WithError(err).WithField("id", id).Warn("Could not load sample for upload.")
		return
	}
	if sample == nil {
		return
	}

	result := o.client.UploadOne(ctx, *sample, token, o.device)
	if err := o.apply(result, []uint{id}); err != nil {
		logrus.WithError(err).WithField("id", id).Warn("Post-upload bookkeeping failed.")
	}
}

// apply handles an upload result for the submitted ids. Caller holds o.mu.
func (o *Orchestrator) apply(result api.UploadResult, ids []uint) error {
	switch result.Outcome {
	case api.OutcomeSuccess:
		// The acknowledgment happened before this mark; a crash in between
		// re-uploads the samples, never loses them.
		if err := o.store.MarkUploaded(ids); err != nil {
			return err
		}
		if result.RotatedToken != "" {
			if err := o.session.SetToken(result.RotatedToken); err != nil {
				logrus.WithError(err).Warn("Could not persist rotated token.")
			} else {
				logrus.Debug("Adopted rotated bearer token.")
			}
		}
		logrus.WithField("count", len(ids)).Info("Uploaded location samples.")
		return nil

	case api.OutcomeUnauthorized:
		// Forced logout. Samples stay pending and retry after the next login.
		logrus.Warn("Upload rejected as unauthorized, clearing session.")
		if err := o.session.Clear(); err != nil {
			logrus.WithError(err).Error("Could not clear session after auth rejection.")
		}
		o.hookMu.Lock()
		hook := o.onUnauthorized
		o.hookMu.Unlock()
		if hook != nil {
			hook()
		}
		return nil

	default:
		logrus.WithField("count", len(ids)).Debug("Upload failed, samples stay pending.")
		return nil
	}
}

package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffsentry/diffsentry/internal/config"
	"github.com/diffsentry/diffsentry/internal/core"
)

const testSecret = "test-secret"

type fakeDispatcher struct {
	dispatched []*core.ReviewEvent
	err        error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, event *core.ReviewEvent) error {
	if d.err != nil {
		return d.err
	}
	d.dispatched = append(d.dispatched, event)
	return nil
}

func (d *fakeDispatcher) Stop() {}

func newTestHandler(dispatcher core.JobDispatcher) *WebhookHandler {
	cfg := &config.Config{}
	cfg.GitHub.WebhookSecret = testSecret
	return NewWebhookHandler(cfg, dispatcher, slog.New(slog.DiscardHandler))
}

func signedRequest(t *testing.T, eventType string, payload []byte) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook/github", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(payload)
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))

	return req
}

func pullRequestPayload(action string) []byte {
	return []byte(`{
		"action": "` + action + `",
		"number": 42,
		"pull_request": {
			"number": 42,
			"head": {"sha": "abc123"}
		},
		"repository": {
			"name": "demo",
			"full_name": "octocat/demo",
			"owner": {"login": "octocat"}
		},
		"installation": {"id": 1001}
	}`)
}

func TestHandleDispatchesReview(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", pullRequestPayload("opened")))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, dispatcher.dispatched, 1)

	event := dispatcher.dispatched[0]
	assert.Equal(t, "octocat", event.RepoOwner)
	assert.Equal(t, "demo", event.RepoName)
	assert.Equal(t, 42, event.PRNumber)
	assert.Equal(t, "abc123", event.HeadSHA)
	assert.Equal(t, int64(1001), event.InstallationID)
}

func TestHandleRejectsBadSignature(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	req := signedRequest(t, "pull_request", pullRequestPayload("opened"))
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(make([]byte, 32)))

	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, dispatcher.dispatched)
}

func TestHandleIgnoresOtherEventTypes(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "push", []byte(`{"ref": "refs/heads/main"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dispatcher.dispatched)
}

func TestHandleIgnoresUnreviewedActions(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", pullRequestPayload("closed")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dispatcher.dispatched)
}

func TestHandleDispatchFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("queue is full")}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", pullRequestPayload("synchronize")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signagekit/tv-player/internal/config"
	"github.com/signagekit/tv-player/internal/identity"
	"github.com/signagekit/tv-player/internal/model"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeDrive answers files.list calls: folder queries get the folder set,
// anything else gets the video set.
func fakeDrive(folders, videos string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(q, "application/vnd.google-apps.folder") {
			io.WriteString(w, folders)
			return
		}
		io.WriteString(w, videos)
	})
}

func newTestSource(t *testing.T, handler http.Handler) *DriveSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DriveConfig{
		APIKey:       "test-key",
		MainFolderID: "main-folder",
		BaseURL:      server.URL,
	}
	return NewDriveSource(cfg, testLogger())
}

func TestResolveLatestPicksNewest(t *testing.T) {
	folders := `{"files":[{"id":"f-other","name":"10.0.0.9"},{"id":"f-mine","name":"203.0.113.7"}]}`
	videos := `{"files":[
		{"id":"v-new","name":"spring.mp4","createdTime":"2026-08-20T10:00:00Z","size":"2048"},
		{"id":"v-old","name":"winter.mp4","createdTime":"2026-01-05T10:00:00Z","size":"1024"}
	]}`

	src := newTestSource(t, fakeDrive(folders, videos))
	id := identity.Identity{ExternalIP: "203.0.113.7"}

	desc, err := src.ResolveLatest(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, desc)

	assert.Equal(t, "v-new", desc.ID)
	assert.Equal(t, "spring.mp4", desc.DisplayName)
	assert.Equal(t, int64(2048), desc.Size)
}

func TestResolveLatestSkipsNonVideoFiles(t *testing.T) {
	folders := `{"files":[{"id":"f-mine","name":"203.0.113.7"}]}`
	videos := `{"files":[
		{"id":"thumb","name":"cover.jpg","mimeType":"image/jpeg","createdTime":"2026-08-21T10:00:00Z"},
		{"id":"v1","name":"reel","mimeType":"video/mp4","createdTime":"2026-08-20T10:00:00Z"}
	]}`

	src := newTestSource(t, fakeDrive(folders, videos))
	id := identity.Identity{ExternalIP: "203.0.113.7"}

	desc, err := src.ResolveLatest(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, "v1", desc.ID, "a newer thumbnail must not shadow the assigned video")
}

func TestResolveLatestMatchesFolderByContainment(t *testing.T) {
	folders := `{"files":[{"id":"f-mine","name":"lobby 203.0.113.7"}]}`
	videos := `{"files":[{"id":"v1","name":"a.mp4","createdTime":"2026-08-01T00:00:00Z"}]}`

	src := newTestSource(t, fakeDrive(folders, videos))
	id := identity.Identity{ExternalIP: "203.0.113.7"}

	desc, err := src.ResolveLatest(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, "v1", desc.ID)
}

func TestResolveLatestNoFolderIsPermanent(t *testing.T) {
	folders := `{"files":[{"id":"f-other","name":"10.0.0.9"}]}`

	src := newTestSource(t, fakeDrive(folders, `{"files":[]}`))
	id := identity.Identity{ExternalIP: "203.0.113.7"}

	_, err := src.ResolveLatest(context.Background(), id)
	require.Error(t, err)

	var rerr *model.ResolutionError
	require.True(t, errors.As(err, &rerr))
	assert.False(t, rerr.Transient, "missing assignment is a permanent condition")
}

func TestResolveLatestEmptyFolderIsAffirmativeNone(t *testing.T) {
	folders := `{"files":[{"id":"f-mine","name":"203.0.113.7"}]}`

	src := newTestSource(t, fakeDrive(folders, `{"files":[]}`))
	id := identity.Identity{ExternalIP: "203.0.113.7"}

	desc, err := src.ResolveLatest(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, desc, "empty assigned folder must resolve to no content, not an error")
}

func TestResolveLatestServerErrorIsTransient(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
	}))
	id := identity.Identity{ExternalIP: "203.0.113.7"}

	_, err := src.ResolveLatest(context.Background(), id)
	require.Error(t, err)

	var rerr *model.ResolutionError
	require.True(t, errors.As(err, &rerr))
	assert.True(t, rerr.Transient)
}

func TestResolveLatestAuthErrorIsPermanent(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	id := identity.Identity{ExternalIP: "203.0.113.7"}

	_, err := src.ResolveLatest(context.Background(), id)
	require.Error(t, err)

	var rerr *model.ResolutionError
	require.True(t, errors.As(err, &rerr))
	assert.False(t, rerr.Transient)
}

func TestResolveLatestUnreachableHostIsTransient(t *testing.T) {
	cfg := config.DriveConfig{
		APIKey:       "test-key",
		MainFolderID: "main-folder",
		// Reserved port on localhost, nothing listens here.
		BaseURL: fmt.Sprintf("http://127.0.0.1:%d", 1),
	}
	src := NewDriveSource(cfg, testLogger())

	_, err := src.ResolveLatest(context.Background(), identity.Identity{ExternalIP: "203.0.113.7"})
	require.Error(t, err)

	var rerr *model.ResolutionError
	require.True(t, errors.As(err, &rerr))
	assert.True(t, rerr.Transient)
}

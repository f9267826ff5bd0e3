package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatforge/console/internal/console/domain"
)

type driveCheckerStub struct {
	err     error
	checked []string
}

func (d *driveCheckerStub) CheckAccess(ctx context.Context, fileID string) error {
	d.checked = append(d.checked, fileID)
	return d.err
}

func TestAddWebsiteSource(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	client := seedClient(t, st, "Acme Pty Ltd", "owner@acme.example")

	svc := &SourceService{Store: st, Activity: &ActivityService{Store: st}}

	t.Run("valid url accepted", func(t *testing.T) {
		src, err := svc.AddWebsite(ctx, "admin-1", client.ID, "https://acme.example/docs", 7)
		require.NoError(t, err)
		require.Equal(t, domain.SourceKindWebsite, src.Kind)
		require.Equal(t, "https://acme.example/docs", src.URL)
		require.Equal(t, 7, src.RefreshRate)

		activities, err := svc.Activity.List(ctx, client.ID, 10)
		require.NoError(t, err)
		require.Equal(t, domain.ActivitySourceAdded, activities[0].Kind)
		require.Equal(t, src.URL, activities[0].Metadata.SourceURL)
	})

	t.Run("non-http schemes rejected", func(t *testing.T) {
		_, err := svc.AddWebsite(ctx, "admin-1", client.ID, "ftp://acme.example/docs", 0)
		require.ErrorIs(t, err, ErrInvalidSourceURL)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := svc.AddWebsite(ctx, "admin-1", client.ID, "not a url at all", 0)
		require.ErrorIs(t, err, ErrInvalidSourceURL)
	})

	t.Run("unknown client rejected", func(t *testing.T) {
		_, err := svc.AddWebsite(ctx, "admin-1", "no-such-client", "https://acme.example", 0)
		require.ErrorIs(t, err, ErrClientNotFound)
	})

	t.Run("negative refresh rate clamps to crawl-once", func(t *testing.T) {
		src, err := svc.AddWebsite(ctx, "admin-1", client.ID, "https://acme.example/faq", -3)
		require.NoError(t, err)
		require.Zero(t, src.RefreshRate)
	})
}

func TestAddDriveSource(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	client := seedClient(t, st, "Acme Pty Ltd", "owner@acme.example")

	const link = "https://drive.google.com/file/d/1a2B3c4D5e6F7g8H9i0JkLmNoPqRsTuVw/view?usp=sharing"

	t.Run("shared file accepted", func(t *testing.T) {
		checker := &driveCheckerStub{}
		svc := &SourceService{Store: st, Drive: checker, Activity: &ActivityService{Store: st}}

		src, err := svc.AddDrive(ctx, "admin-1", client.ID, link, 0)
		require.NoError(t, err)
		require.Equal(t, domain.SourceKindDrive, src.Kind)
		require.Equal(t, []string{"1a2B3c4D5e6F7g8H9i0JkLmNoPqRsTuVw"}, checker.checked)
	})

	t.Run("unshared file rejected", func(t *testing.T) {
		checker := &driveCheckerStub{err: errors.New("403 forbidden")}
		svc := &SourceService{Store: st, Drive: checker, Activity: &ActivityService{Store: st}}

		_, err := svc.AddDrive(ctx, "admin-1", client.ID, link, 0)
		require.ErrorIs(t, err, ErrDriveNotShared)
	})

	t.Run("malformed link rejected before any check", func(t *testing.T) {
		checker := &driveCheckerStub{}
		svc := &SourceService{Store: st, Drive: checker, Activity: &ActivityService{Store: st}}

		_, err := svc.AddDrive(ctx, "admin-1", client.ID, "https://drive.google.com/", 0)
		require.ErrorIs(t, err, domain.ErrInvalidDriveLink)
		require.Empty(t, checker.checked)
	})
}

func TestRemoveSource(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mine := seedClient(t, st, "Acme Pty Ltd", "owner@acme.example")
	theirs := seedClient(t, st, "Other Co", "other@example.com")

	svc := &SourceService{Store: st, Activity: &ActivityService{Store: st}}

	src, err := svc.AddWebsite(ctx, "admin-1", mine.ID, "https://acme.example/docs", 0)
	require.NoError(t, err)

	t.Run("another tenant cannot remove it by id", func(t *testing.T) {
		err := svc.Remove(ctx, "user-2", theirs.ID, src.ID)
		require.ErrorIs(t, err, ErrSourceNotFound)

		left, err := svc.List(ctx, mine.ID)
		require.NoError(t, err)
		require.Len(t, left, 1)
	})

	t.Run("the owner can", func(t *testing.T) {
		require.NoError(t, svc.Remove(ctx, "user-1", mine.ID, src.ID))

		left, err := svc.List(ctx, mine.ID)
		require.NoError(t, err)
		require.Empty(t, left)

		activities, err := svc.Activity.List(ctx, mine.ID, 10)
		require.NoError(t, err)
		require.Equal(t, domain.ActivitySourceRemoved, activities[0].Kind)
		require.Equal(t, src.URL, activities[0].Metadata.SourceURL)
	})

	t.Run("removing twice reports not found", func(t *testing.T) {
		err := svc.Remove(ctx, "user-1", mine.ID, src.ID)
		require.ErrorIs(t, err, ErrSourceNotFound)
	})
}

func TestSourceChangesKickIngestWebhook(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	client := seedClient(t, st, "Acme Pty Ltd", "owner@acme.example")

	var (
		mu     sync.Mutex
		bodies []string
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
	}))
	defer hook.Close()

	svc := &SourceService{
		Store:            st,
		Activity:         &ActivityService{Store: st},
		IngestWebhookURL: hook.URL,
		HTTPClient:       hook.Client(),
	}

	src, err := svc.AddWebsite(ctx, "admin-1", client.ID, "https://acme.example/docs", 0)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, "admin-1", client.ID, src.ID))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2)
	require.JSONEq(t, `{"client_id":"`+client.ID+`"}`, bodies[0])
}

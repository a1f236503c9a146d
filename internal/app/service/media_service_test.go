package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/cache"
	"github.com/testimonialhq/testimonials-backend/internal/storage"
)

// fakeStorage stands in for S3 and records deletions.
type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) PresignUpload(ctx context.Context, filename, contentType, prefix string) (*storage.PresignedURLResponse, error) {
	key := fmt.Sprintf("%s/fake-%s", prefix, filename)
	return &storage.PresignedURLResponse{
		UploadURL: "https://upload.example.com/" + key,
		FileURL:   s.FileURL(key),
		Key:       key,
	}, nil
}

func (s *fakeStorage) FileURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (s *fakeStorage) DeleteObject(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func newMediaService(t *testing.T, env *testEnv, store ObjectStorage) *MediaService {
	t.Helper()
	return NewMediaService(
		repository.NewMediaRepository(env.db),
		repository.NewTestimonialRepository(env.db),
		store,
		cache.NewService(env.backend, env.cfg),
		NewValidator(env.cfg),
		env.cfg,
	)
}

func attachInput(filename string) AttachMediaInput {
	return AttachMediaInput{
		ObjectKey: "testimonials/fake-" + filename,
		Filename:  filename,
		FileSize:  2048,
	}
}

func TestPresignUpload(t *testing.T) {
	env := newTestEnv(t)
	store := &fakeStorage{}
	svc := newMediaService(t, env, store)
	ctx := context.Background()

	author := env.createUser(t, "author@example.com", model.RoleUser)
	created := env.createTestimonial(t, &author.ID)

	resp, err := svc.PresignUpload(ctx, created.ID, "photo.jpg", "image/jpeg", 2048, env.viewerFor(author))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.UploadURL)
	assert.Contains(t, resp.Key, "testimonials/")
}

func TestPresignUploadRejections(t *testing.T) {
	env := newTestEnv(t)
	store := &fakeStorage{}
	svc := newMediaService(t, env, store)
	ctx := context.Background()

	author := env.createUser(t, "author@example.com", model.RoleUser)
	stranger := env.createUser(t, "stranger@example.com", model.RoleUser)
	created := env.createTestimonial(t, &author.ID)

	_, err := svc.PresignUpload(ctx, created.ID, "script.exe", "application/octet-stream", 2048, env.viewerFor(author))
	assert.ErrorIs(t, err, ErrFileTypeDenied)

	_, err = svc.PresignUpload(ctx, created.ID, "video.mp4", "video/mp4", 11*1024*1024, env.viewerFor(author))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = svc.PresignUpload(ctx, created.ID, "photo.jpg", "image/jpeg", 2048, env.viewerFor(stranger))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.PresignUpload(ctx, 9999, "photo.jpg", "image/jpeg", 2048, env.viewerFor(author))
	assert.ErrorIs(t, err, ErrTestimonialNotFound)

	env.cfg.MediaEnabled = false
	_, err = svc.PresignUpload(ctx, created.ID, "photo.jpg", "image/jpeg", 2048, env.viewerFor(author))
	assert.ErrorIs(t, err, ErrMediaDisabled)
}

func TestAttachDetectsMediaType(t *testing.T) {
	env := newTestEnv(t)
	svc := newMediaService(t, env, &fakeStorage{})
	ctx := context.Background()

	author := env.createUser(t, "author@example.com", model.RoleUser)
	created := env.createTestimonial(t, &author.ID)
	viewer := env.viewerFor(author)

	tests := []struct {
		filename string
		want     model.MediaType
	}{
		{filename: "photo.jpg", want: model.MediaImage},
		{filename: "clip.mp4", want: model.MediaVideo},
		{filename: "manual.pdf", want: model.MediaDocument},
	}

	for _, tt := range tests {
		media, err := svc.Attach(ctx, created.ID, attachInput(tt.filename), viewer)
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.want, media.MediaType, tt.filename)
		assert.Contains(t, media.FileURL, "https://cdn.example.com/")
	}
}

func TestAttachPrimaryStaysExclusive(t *testing.T) {
	env := newTestEnv(t)
	svc := newMediaService(t, env, &fakeStorage{})
	ctx := context.Background()

	author := env.createUser(t, "author@example.com", model.RoleUser)
	created := env.createTestimonial(t, &author.ID)
	viewer := env.viewerFor(author)

	first := attachInput("one.jpg")
	first.IsPrimary = true
	firstMedia, err := svc.Attach(ctx, created.ID, first, viewer)
	require.NoError(t, err)

	second := attachInput("two.jpg")
	second.IsPrimary = true
	secondMedia, err := svc.Attach(ctx, created.ID, second, viewer)
	require.NoError(t, err)

	list, err := svc.ListByTestimonial(created.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	primaries := 0
	for _, m := range list {
		if m.IsPrimary {
			primaries++
			assert.Equal(t, secondMedia.ID, m.ID)
		}
	}
	assert.Equal(t, 1, primaries)
	_ = firstMedia
}

func TestMediaUpdate(t *testing.T) {
	env := newTestEnv(t)
	svc := newMediaService(t, env, &fakeStorage{})
	ctx := context.Background()

	author := env.createUser(t, "author@example.com", model.RoleUser)
	created := env.createTestimonial(t, &author.ID)
	viewer := env.viewerFor(author)

	media, err := svc.Attach(ctx, created.ID, attachInput("photo.jpg"), viewer)
	require.NoError(t, err)

	title := "Office photo"
	updated, err := svc.Update(ctx, media.ID, UpdateMediaInput{Title: &title}, viewer)
	require.NoError(t, err)
	assert.Equal(t, "Office photo", updated.Title)
}

func TestMediaDeleteRemovesStoredObject(t *testing.T) {
	env := newTestEnv(t)
	store := &fakeStorage{}
	svc := newMediaService(t, env, store)
	ctx := context.Background()

	author := env.createUser(t, "author@example.com", model.RoleUser)
	stranger := env.createUser(t, "stranger@example.com", model.RoleUser)
	created := env.createTestimonial(t, &author.ID)
	viewer := env.viewerFor(author)

	media, err := svc.Attach(ctx, created.ID, attachInput("photo.jpg"), viewer)
	require.NoError(t, err)

	err = svc.Delete(ctx, media.ID, env.viewerFor(stranger))
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, svc.Delete(ctx, media.ID, viewer))
	assert.Equal(t, []string{media.ObjectKey}, store.deleted)

	_, err = svc.Get(ctx, media.ID)
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

func TestMediaStats(t *testing.T) {
	env := newTestEnv(t)
	svc := newMediaService(t, env, &fakeStorage{})
	ctx := context.Background()

	author := env.createUser(t, "author@example.com", model.RoleUser)
	created := env.createTestimonial(t, &author.ID)
	viewer := env.viewerFor(author)

	_, err := svc.Attach(ctx, created.ID, attachInput("one.jpg"), viewer)
	require.NoError(t, err)
	_, err = svc.Attach(ctx, created.ID, attachInput("clip.mp4"), viewer)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.TypeCounts["image"])
	assert.EqualValues(t, 1, stats.TypeCounts["video"])
	assert.EqualValues(t, 4096, stats.TotalBytes)
}

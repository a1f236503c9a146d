package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/cache"
)

func newCategoryService(t *testing.T, env *testEnv) *CategoryService {
	t.Helper()
	return NewCategoryService(
		repository.NewCategoryRepository(env.db),
		cache.NewService(env.backend, env.cfg),
		env.cfg,
	)
}

func TestCategoryCreate(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(t, env)
	ctx := context.Background()
	moderator := env.viewerFor(env.createUser(t, "mod@example.com", model.RoleModerator))

	category, err := svc.Create(ctx, CategoryInput{Name: "customer support"}, moderator)
	require.NoError(t, err)

	assert.Equal(t, "Customer Support", category.Name)
	assert.Equal(t, "customer-support", category.Slug)
	assert.True(t, category.IsActive)
}

func TestCategoryCreateRequiresModerator(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(t, env)
	user := env.viewerFor(env.createUser(t, "user@example.com", model.RoleUser))

	_, err := svc.Create(context.Background(), CategoryInput{Name: "Support"}, user)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Create(context.Background(), CategoryInput{Name: "Support"}, Guest)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCategorySlugDeduplication(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(t, env)
	ctx := context.Background()
	moderator := env.viewerFor(env.createUser(t, "mod@example.com", model.RoleModerator))

	first, err := svc.Create(ctx, CategoryInput{Name: "Support"}, moderator)
	require.NoError(t, err)
	second, err := svc.Create(ctx, CategoryInput{Name: "support"}, moderator)
	require.NoError(t, err)

	assert.Equal(t, "support", first.Slug)
	assert.Equal(t, "support-1", second.Slug)
}

func TestCategoryListActiveOnlyForUsers(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(t, env)
	moderator := env.viewerFor(env.createUser(t, "mod@example.com", model.RoleModerator))

	env.createCategory(t, "visible", true)
	env.createCategory(t, "hidden", false)

	list, err := svc.List(Guest)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "visible", list[0].Name)

	list, err = svc.List(moderator)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCategoryUpdateKeepsSlug(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(t, env)
	ctx := context.Background()
	moderator := env.viewerFor(env.createUser(t, "mod@example.com", model.RoleModerator))

	category, err := svc.Create(ctx, CategoryInput{Name: "Support"}, moderator)
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(ctx, category.ID, CategoryInput{Name: "customer care", IsActive: &inactive}, moderator)
	require.NoError(t, err)

	assert.Equal(t, "Customer Care", updated.Name)
	assert.Equal(t, "support", updated.Slug)
	assert.False(t, updated.IsActive)
}

func TestCategoryDeleteDetachesTestimonials(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(t, env)
	ctx := context.Background()
	moderator := env.viewerFor(env.createUser(t, "mod@example.com", model.RoleModerator))

	category := env.createCategory(t, "busy", true)
	input := validInput()
	input.CategoryID = &category.ID
	created, err := env.svc.Create(ctx, input, nil, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, category.ID, moderator))

	_, err = svc.Get(ctx, category.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	// The testimonial survives, uncategorized.
	var reloaded model.Testimonial
	require.NoError(t, env.db.First(&reloaded, created.ID).Error)
	assert.Nil(t, reloaded.CategoryID)
}

func TestCategoryDeleteEmpty(t *testing.T) {
	env := newTestEnv(t)
	svc := newCategoryService(t, env)
	ctx := context.Background()
	moderator := env.viewerFor(env.createUser(t, "mod@example.com", model.RoleModerator))

	empty := env.createCategory(t, "empty", true)
	require.NoError(t, svc.Delete(ctx, empty.ID, moderator))

	_, err := svc.Get(ctx, empty.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	err = svc.Delete(ctx, empty.ID, moderator)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryListWithCounts(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.RequireApproval = false
	svc := newCategoryService(t, env)
	ctx := context.Background()

	category := env.createCategory(t, "product", true)
	env.createCategory(t, "empty", true)

	input := validInput()
	input.CategoryID = &category.ID
	_, err := env.svc.Create(ctx, input, nil, "")
	require.NoError(t, err)

	list, err := svc.ListWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byName := map[string]int64{}
	for _, c := range list {
		byName[c.Name] = c.PublishedCount
	}
	assert.EqualValues(t, 1, byName["product"])
	assert.EqualValues(t, 0, byName["empty"])
}

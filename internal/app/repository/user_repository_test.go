package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/db"
)

func setupUserTest(t *testing.T) UserRepository {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return NewUserRepository(testDB)
}

func newTestUser(email string) *model.User {
	return &model.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
}

func TestUserRepository_Create(t *testing.T) {
	repo := setupUserTest(t)

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name:    "Valid user",
			user:    newTestUser("test@example.com"),
			wantErr: false,
		},
		{
			name:    "Duplicate email",
			user:    newTestUser("test@example.com"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
			}
		})
	}
}

func TestUserRepository_FindByID(t *testing.T) {
	repo := setupUserTest(t)

	user := newTestUser("test@example.com")
	require.NoError(t, repo.Create(user))

	tests := []struct {
		name    string
		id      uint
		wantErr bool
	}{
		{
			name:    "Existing user",
			id:      user.ID,
			wantErr: false,
		},
		{
			name:    "Non-existing user",
			id:      9999,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByID(tt.id)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				require.NotNil(t, found)
				assert.Equal(t, user.Email, found.Email)
				assert.Equal(t, user.Name, found.Name)
			}
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo := setupUserTest(t)

	user := newTestUser("test@example.com")
	require.NoError(t, repo.Create(user))

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "Existing email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "Non-existing email",
			email:   "notfound@example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByEmail(tt.email)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				require.NotNil(t, found)
				assert.Equal(t, user.Email, found.Email)
				assert.Equal(t, user.Name, found.Name)
			}
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	repo := setupUserTest(t)

	user := newTestUser("test@example.com")
	require.NoError(t, repo.Create(user))

	user.Name = "Updated Name"
	user.Role = model.RoleModerator

	err := repo.Update(user)
	assert.NoError(t, err)

	updated, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", updated.Name)
	assert.Equal(t, model.RoleModerator, updated.Role)
}

func TestUserRepository_Delete(t *testing.T) {
	repo := setupUserTest(t)

	user := newTestUser("test@example.com")
	require.NoError(t, repo.Create(user))

	err := repo.Delete(user.ID)
	assert.NoError(t, err)

	// Soft delete hides the row from lookups
	_, err = repo.FindByID(user.ID)
	assert.Error(t, err)
}

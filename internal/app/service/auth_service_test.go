package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/db"
)

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(
		userRepo,
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
}

func TestAuthService_Register(t *testing.T) {
	authService := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantErr  error
	}{
		{
			name:     "Valid registration",
			email:    "test@example.com",
			password: "password123",
			userName: "Test User",
			wantErr:  nil,
		},
		{
			name:     "Duplicate email",
			email:    "test@example.com",
			password: "password456",
			userName: "Another User",
			wantErr:  ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(tt.email, tt.password, tt.userName)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				require.NotNil(t, tokens)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.userName, user.Name)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t)

	email := "test@example.com"
	password := "password123"
	_, _, err := authService.Register(email, password, "Test User")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "Valid login",
			email:    email,
			password: password,
			wantErr:  nil,
		},
		{
			name:     "Wrong password",
			email:    email,
			password: "wrongpassword",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Non-existing user",
			email:    "notfound@example.com",
			password: "password123",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				require.NotNil(t, tokens)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}
		})
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register("test@example.com", "password123", "Test User")
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  uint
		wantErr error
	}{
		{
			name:    "Existing user",
			userID:  user.ID,
			wantErr: nil,
		},
		{
			name:    "Non-existing user",
			userID:  9999,
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := authService.GetUserByID(tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
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

func TestAuthService_PasswordSecurity(t *testing.T) {
	authService := setupAuthServiceTest(t)

	password := "mySecretPassword123"
	user, _, err := authService.Register("test@example.com", password, "Test User")
	require.NoError(t, err)

	// Password should be hashed
	assert.NotEqual(t, password, user.PasswordHash)
	assert.Contains(t, user.PasswordHash, "$2a$")
}

func TestAuthService_RefreshToken(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, tokens, err := authService.Register("test@example.com", "password123", "Test User")
	require.NoError(t, err)

	t.Run("Valid refresh token", func(t *testing.T) {
		newTokens, err := authService.RefreshToken(tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, newTokens.AccessToken)
		assert.NotEmpty(t, newTokens.RefreshToken)
	})

	t.Run("Access token rejected", func(t *testing.T) {
		_, err := authService.RefreshToken(tokens.AccessToken)
		assert.Error(t, err)
	})

	t.Run("Garbage token rejected", func(t *testing.T) {
		_, err := authService.RefreshToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestAuthService_RevokeToken(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, tokens, err := authService.Register("test@example.com", "password123", "Test User")
	require.NoError(t, err)

	// Without a blacklist backend revocation is a logged no-op.
	err = authService.RevokeToken(tokens.RefreshToken)
	assert.NoError(t, err)

	// Invalid tokens are ignored rather than surfaced.
	err = authService.RevokeToken("not-a-token")
	assert.NoError(t, err)
}

func TestAuthService_TokenGeneration(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, tokens, err := authService.Register("test@example.com", "password123", "Test User")
	require.NoError(t, err)

	// Tokens should be different
	assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)

	// Tokens should be valid JWT format
	assert.Contains(t, tokens.AccessToken, ".")
	assert.Contains(t, tokens.RefreshToken, ".")

	// Login should generate new tokens
	_, newTokens, err := authService.Login("test@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, newTokens.AccessToken)
	assert.NotEmpty(t, newTokens.RefreshToken)
}

package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	result, err := env.users.Register(ctx, registerInput("chef"))
	require.NoError(t, err)
	assert.NotZero(t, result.User.ID)
	assert.NotEmpty(t, result.Token)
	assert.NotEqual(t, "password123", result.User.Password)

	body, err := json.Marshal(models.NewUserResponse(result.User))
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password")

	user, err := env.users.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	env := setupTestEnv(t)
	in := registerInput("chef")
	in.Email = "  Chef@Example.COM "

	result, err := env.users.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", result.User.Email)
}

func TestRegisterValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.register(t, "taken")

	testCases := []struct {
		name   string
		mutate func(in *RegisterInput)
		fields []string
	}{
		{
			name:   "every missing field is reported",
			mutate: func(in *RegisterInput) { *in = RegisterInput{} },
			fields: []string{"first_name", "last_name", "username", "email", "password"},
		},
		{
			name:   "duplicate username",
			mutate: func(in *RegisterInput) { in.Username = "taken" },
			fields: []string{"username"},
		},
		{
			name:   "duplicate email",
			mutate: func(in *RegisterInput) { in.Email = "TAKEN@example.com" },
			fields: []string{"email"},
		},
		{
			name:   "short password",
			mutate: func(in *RegisterInput) { in.Password, in.PasswordConfirmation = "short", "short" },
			fields: []string{"password"},
		},
		{
			name:   "confirmation mismatch",
			mutate: func(in *RegisterInput) { in.PasswordConfirmation = "different123" },
			fields: []string{"password"},
		},
		{
			name:   "invalid email",
			mutate: func(in *RegisterInput) { in.Email = "not-an-email" },
			fields: []string{"email"},
		},
		{
			name: "password longer than 72 bytes",
			mutate: func(in *RegisterInput) {
				in.Password = strings.Repeat("é", 40)
				in.PasswordConfirmation = in.Password
			},
			fields: []string{"password"},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			in := registerInput("fresh")
			tt.mutate(&in)

			_, err := env.users.Register(ctx, in)
			requireFieldErrors(t, err, tt.fields...)
		})
	}

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRegisterDuplicateMessage(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "chef")

	_, err := env.users.Register(context.Background(), registerInput("chef"))
	validationErr := requireFieldErrors(t, err, "username", "email")
	assert.Equal(t, []string{"The username has already been taken."}, validationErr.Fields["username"])
}

func TestLoginDoesNotRevealWhichCredentialFailed(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.register(t, "chef")

	_, wrongPassword := env.users.Login(ctx, LoginInput{Email: "chef@example.com", Password: "wrong-password"})
	_, unknownEmail := env.users.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginValidationAndSuccess(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	registered := env.register(t, "chef")

	_, err := env.users.Login(ctx, LoginInput{})
	requireFieldErrors(t, err, "email", "password")

	result, err := env.users.Login(ctx, LoginInput{Email: "CHEF@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)
	assert.NotEqual(t, registered.Token, result.Token)
}

func TestLogoutRevokesEverySession(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	first := env.register(t, "chef")
	second, err := env.users.Login(ctx, LoginInput{Email: "chef@example.com", Password: "password123"})
	require.NoError(t, err)
	other := env.register(t, "other")

	require.NoError(t, env.users.Logout(ctx, first.User.ID))

	_, err = env.users.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = env.users.Authenticate(ctx, second.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	user, err := env.users.Authenticate(ctx, other.Token)
	require.NoError(t, err)
	assert.Equal(t, other.User.ID, user.ID)
}

func TestAuthenticateUnknownToken(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.users.Authenticate(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdateProfile(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	chef := env.register(t, "chef")
	env.register(t, "other")

	t.Run("only supplied fields change", func(t *testing.T) {
		user, err := env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{FirstName: strPtr("Gordon")})
		require.NoError(t, err)
		assert.Equal(t, "Gordon", user.FirstName)
		assert.Equal(t, "Cook", user.LastName)
		assert.Equal(t, "chef", user.Username)
	})

	t.Run("username taken by someone else", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{Username: strPtr("other")})
		requireFieldErrors(t, err, "username")
	})

	t.Run("keeping your own username is allowed", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{Username: strPtr("chef")})
		assert.NoError(t, err)
	})

	t.Run("empty values are rejected", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{LastName: strPtr(""), Email: strPtr("bad")})
		requireFieldErrors(t, err, "last_name", "email")
	})

	t.Run("blank values are rejected and nothing is stored", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{
			FirstName: strPtr(""),
			LastName:  strPtr(" "),
			Username:  strPtr(""),
			Email:     strPtr(""),
			Password:  strPtr(""),
		})
		verr := requireFieldErrors(t, err, "first_name", "last_name", "username", "email", "password")
		assert.Equal(t, []string{"The username field is required."}, verr.Fields["username"])

		stored, err := env.users.GetUserByID(ctx, chef.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "chef", stored.Username)
		assert.NotEmpty(t, stored.FirstName)
	})

	t.Run("password longer than 72 bytes", func(t *testing.T) {
		long := strings.Repeat("é", 40)
		_, err := env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{Password: &long, PasswordConfirmation: &long})
		requireFieldErrors(t, err, "password")
	})

	t.Run("password is re-hashed", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{
			Password:             strPtr("new-password"),
			PasswordConfirmation: strPtr("new-password"),
		})
		require.NoError(t, err)

		_, err = env.users.Login(ctx, LoginInput{Email: "chef@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = env.users.Login(ctx, LoginInput{Email: "chef@example.com", Password: "new-password"})
		assert.NoError(t, err)
	})

	t.Run("password confirmation mismatch", func(t *testing.T) {
		_, err := env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{
			Password:             strPtr("another-password"),
			PasswordConfirmation: strPtr("typo-password"),
		})
		requireFieldErrors(t, err, "password")
	})
}

func TestUpdateProfilePictureReplacesOldFile(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	chef := env.register(t, "chef")

	first, err := env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{
		Image: &ImageUpload{Filename: "me.png", Size: int64(len(pngBytes)), Data: pngBytes},
	})
	require.NoError(t, err)
	require.NotNil(t, first.ProfilePicture)
	firstPath := filepath.Join(env.store.Root(), filepath.FromSlash(*first.ProfilePicture))
	assert.FileExists(t, firstPath)

	second, err := env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{
		Image: &ImageUpload{Filename: "me.jpg", Size: int64(len(jpegBytes)), Data: jpegBytes},
	})
	require.NoError(t, err)
	require.NotNil(t, second.ProfilePicture)
	assert.NotEqual(t, *first.ProfilePicture, *second.ProfilePicture)
	_, err = os.Stat(firstPath)
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(env.store.Root(), filepath.FromSlash(*second.ProfilePicture)))

	stored, err := env.users.GetUserByID(ctx, chef.User.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ProfilePicture, stored.ProfilePicture)

	_, err = env.users.UpdateProfile(ctx, chef.User.ID, UpdateProfileInput{
		Image: &ImageUpload{Filename: "notes.txt", Size: 5, Data: []byte("hello")},
	})
	requireFieldErrors(t, err, "image")
}

package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dom/chat-server/internal/service"
	"github.com/dom/chat-server/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Register(t *testing.T) {
	services, repos := testutil.NewTestServices(t)
	ctx := context.Background()

	testutil.NewUserBuilder().
		WithEmail("taken@example.com").
		Build(t, repos.User)

	tests := []struct {
		name    string
		input   service.RegisterInput
		wantErr error
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				FullName: "Alice",
				Email:    "alice@example.com",
				Password: "secret123",
			},
		},
		{
			name: "duplicate email",
			input: service.RegisterInput{
				FullName: "Alice Again",
				Email:    "taken@example.com",
				Password: "secret123",
			},
			wantErr: service.ErrEmailExists,
		},
		{
			name:    "missing full name",
			input:   service.RegisterInput{Email: "a@example.com", Password: "secret123"},
			wantErr: service.ErrMissingFields,
		},
		{
			name:    "blank email",
			input:   service.RegisterInput{FullName: "A", Email: "   ", Password: "secret123"},
			wantErr: service.ErrMissingFields,
		},
		{
			name:    "missing password",
			input:   service.RegisterInput{FullName: "A", Email: "b@example.com"},
			wantErr: service.ErrMissingFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := services.Auth.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, tt.input.FullName, user.FullName)
			assert.Equal(t, tt.input.Email, user.Email)
			assert.Nil(t, user.Token)

			// Password is stored hashed
			assert.NotEqual(t, tt.input.Password, user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.input.Password)))
		})
	}
}

func TestAuthService_Register_Concurrent(t *testing.T) {
	services, repos := testutil.NewTestServices(t)
	ctx := context.Background()

	const workers = 5
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = services.Auth.Register(ctx, service.RegisterInput{
				FullName: "Racer",
				Email:    "race@example.com",
				Password: "secret123",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, service.ErrEmailExists)
	}
	assert.Equal(t, 1, succeeded)

	users, err := repos.User.ListExcluding(ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAuthService_Login(t *testing.T) {
	services, repos := testutil.NewTestServices(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("login@example.com").
		WithPassword("correctpassword").
		Build(t, repos.User)

	tests := []struct {
		name    string
		input   service.LoginInput
		wantErr error
	}{
		{
			name:  "successful login",
			input: service.LoginInput{Email: "login@example.com", Password: "correctpassword"},
		},
		{
			name:    "wrong password",
			input:   service.LoginInput{Email: "login@example.com", Password: "wrongpassword"},
			wantErr: service.ErrInvalidCredentials,
		},
		{
			name:    "unknown email",
			input:   service.LoginInput{Email: "nobody@example.com", Password: "correctpassword"},
			wantErr: service.ErrInvalidCredentials,
		},
		{
			name:    "missing password",
			input:   service.LoginInput{Email: "login@example.com"},
			wantErr: service.ErrMissingFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := services.Auth.Login(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, user.ID, result.User.ID)
			assert.NotEmpty(t, result.Token)

			// The returned token is the one persisted on the user
			stored, err := repos.User.GetByID(ctx, user.ID)
			require.NoError(t, err)
			require.NotNil(t, stored.Token)
			assert.Equal(t, result.Token, *stored.Token)
		})
	}
}

func TestAuthService_Login_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	services, repos := testutil.NewTestServices(t)
	ctx := context.Background()

	testutil.NewUserBuilder().
		WithEmail("known@example.com").
		WithPassword("rightpassword").
		Build(t, repos.User)

	_, wrongPassword := services.Auth.Login(ctx, service.LoginInput{Email: "known@example.com", Password: "nope"})
	_, unknownEmail := services.Auth.Login(ctx, service.LoginInput{Email: "unknown@example.com", Password: "nope"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_ValidateToken(t *testing.T) {
	services, repos := testutil.NewTestServices(t)
	cfg := testutil.TestConfig()
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("token@example.com").
		WithPassword("password123").
		Build(t, repos.User)

	result, err := services.Auth.Login(ctx, service.LoginInput{Email: "token@example.com", Password: "password123"})
	require.NoError(t, err)

	expired := signToken(t, cfg.JWTSecret, jwt.SigningMethodHS256, service.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	otherSecret := signToken(t, "another-secret", jwt.SigningMethodHS256, service.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	wrongAlg := signToken(t, cfg.JWTSecret, jwt.SigningMethodHS512, service.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid token", token: result.Token},
		{name: "garbage", token: "invalid-token", wantErr: true},
		{name: "expired", token: expired, wantErr: true},
		{name: "signed with another secret", token: otherSecret, wantErr: true},
		{name: "unexpected algorithm", token: wrongAlg, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := services.Auth.ValidateToken(tt.token)

			if tt.wantErr {
				assert.ErrorIs(t, err, service.ErrInvalidToken)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, user.Email, claims.Email)
			assert.Equal(t, user.ID, claims.Subject)
			require.NotNil(t, claims.ExpiresAt)
			assert.WithinDuration(t, time.Now().Add(cfg.TokenLifetime()), claims.ExpiresAt.Time, time.Minute)
		})
	}
}

func TestAuthService_ListOthers(t *testing.T) {
	services, repos := testutil.NewTestServices(t)
	ctx := context.Background()

	alice, _ := testutil.NewUserBuilder().WithFullName("Alice").WithEmail("alice@example.com").Build(t, repos.User)
	bob, _ := testutil.NewUserBuilder().WithFullName("Bob").WithEmail("bob@example.com").Build(t, repos.User)
	carol, _ := testutil.NewUserBuilder().WithFullName("Carol").WithEmail("carol@example.com").Build(t, repos.User)

	others, err := services.Auth.ListOthers(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, others, 2)
	assert.Equal(t, bob.ID, others[0].ID)
	assert.Equal(t, "Bob", others[0].FullName)
	assert.Equal(t, carol.ID, others[1].ID)

	everyone, err := services.Auth.ListOthers(ctx, "not-a-user")
	require.NoError(t, err)
	assert.Len(t, everyone, 3)
}

func TestAuthService_GetUserByID(t *testing.T) {
	services, repos := testutil.NewTestServices(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repos.User)

	got, err := services.Auth.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = services.Auth.GetUserByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims service.TokenClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

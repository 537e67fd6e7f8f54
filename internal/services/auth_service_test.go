package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthFixture(t *testing.T) (*AuthService, *session.Hub, *config.Config) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
	hub := session.NewHub()
	return NewAuthService(db, cfg, hub), hub, cfg
}

func TestAuth_SignUpSignIn(t *testing.T) {
	svc, hub, cfg := newAuthFixture(t)
	ctx := context.Background()

	var mu sync.Mutex
	var kinds []session.EventKind
	unsubscribe := hub.Subscribe(func(e session.Event) {
		mu.Lock()
		kinds = append(kinds, e.Kind)
		mu.Unlock()
	})
	defer unsubscribe()

	resp, err := svc.SignUp(ctx, &dto.RegisterRequest{Email: " Budi@Example.com ", Password: "rahasia123", DisplayName: "Budi"})
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", resp.User.Email)
	assert.Equal(t, "Budi", resp.User.DisplayName)
	assert.NotEmpty(t, resp.RefreshToken)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (any, error) { return []byte(cfg.JWTSecret), nil })
	require.NoError(t, err)
	sess, err := session.FromClaims(token.Claims.(jwt.MapClaims))
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, sess.UserID)
	assert.Equal(t, "Budi", sess.DisplayName)

	_, err = svc.SignUp(ctx, &dto.RegisterRequest{Email: "budi@example.com", Password: "rahasia123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.SignIn(ctx, &dto.LoginRequest{Email: "budi@example.com", Password: "salah"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, &dto.LoginRequest{Email: "BUDI@example.com", Password: "rahasia123"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []session.EventKind{session.EventSignedUp, session.EventSignedIn}, kinds)
}

func TestAuth_SignUpValidation(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, err := svc.SignUp(context.Background(), &dto.RegisterRequest{Email: "bukan-email", Password: "rahasia123"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SignUp(context.Background(), &dto.RegisterRequest{Email: "a@b.id", Password: "pendek"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuth_RefreshRotatesAndSignOutRevokes(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, &dto.RegisterRequest{Email: "siti@example.com", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, "siti", resp.User.DisplayName)

	next, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	sess := session.Session{UserID: next.User.ID}
	require.NoError(t, svc.SignOut(ctx, sess, &dto.LogoutRequest{RefreshToken: next.RefreshToken}))
	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: next.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuth_RefreshFailsWhenRevokeFails(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, &dto.RegisterRequest{Email: "andi@example.com", Password: "rahasia123"})
	require.NoError(t, err)

	require.NoError(t, svc.db.Callback().Update().Before("gorm:update").Register("test:fail_revoke", func(tx *gorm.DB) {
		if tx.Statement.Table == "refresh_tokens" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	for range 3 {
		_, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidToken)
	}

	var count int64
	require.NoError(t, svc.db.Model(&models.RefreshToken{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "no new token pair issued")
}

func TestAuth_RefreshLosesToConcurrentRotation(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, &dto.RegisterRequest{Email: "rina@example.com", Password: "rahasia123"})
	require.NoError(t, err)

	// Another refresh revokes the token between our lookup and our update.
	require.NoError(t, svc.db.Callback().Query().After("gorm:query").Register("test:rotate_elsewhere", func(tx *gorm.DB) {
		if tx.Statement.Table == "refresh_tokens" {
			tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE refresh_tokens SET revoked = ?", true)
		}
	}))

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	var count int64
	require.NoError(t, svc.db.Model(&models.RefreshToken{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

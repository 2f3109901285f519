package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio-tracker/internal/client/api"
	"github.com/iudanet/portfolio-tracker/internal/client/storage"
	"github.com/iudanet/portfolio-tracker/internal/clock"
	pkgapi "github.com/iudanet/portfolio-tracker/pkg/api"
)

var testNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

// memoryStore is an in-memory storage.AuthStorage
type memoryStore struct {
	data *storage.AuthData
}

func (m *memoryStore) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	cp := *auth
	m.data = &cp
	return nil
}

func (m *memoryStore) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if m.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	cp := *m.data
	return &cp, nil
}

func (m *memoryStore) DeleteAuth(ctx context.Context) error {
	if m.data == nil {
		return storage.ErrAuthNotFound
	}
	m.data = nil
	return nil
}

// fakeClient выдает пары токенов с порядковым номером
type fakeClient struct {
	loginErr    error
	refreshErr  error
	logoutErr   error
	issued      int
	refreshes   int
	logoutCalls []string
}

func (f *fakeClient) tokens() pkgapi.TokenResponse {
	f.issued++
	n := string(rune('0' + f.issued))
	return pkgapi.TokenResponse{
		AccessToken:      "access-" + n,
		RefreshToken:     "refresh-" + n,
		ExpiresIn:        900,
		RefreshExpiresAt: testNow.Add(2 * time.Hour),
	}
}

func (f *fakeClient) Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.AuthResponse, error) {
	return &pkgapi.AuthResponse{User: pkgapi.UserResponse{ID: "user-1", Email: req.Email}, Tokens: f.tokens()}, nil
}

func (f *fakeClient) Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &pkgapi.AuthResponse{User: pkgapi.UserResponse{ID: "user-1", Email: req.Email}, Tokens: f.tokens()}, nil
}

func (f *fakeClient) Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error) {
	f.refreshes++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	pair := f.tokens()
	return &pair, nil
}

func (f *fakeClient) Logout(ctx context.Context, accessToken, refreshToken string) (*pkgapi.MessageResponse, error) {
	f.logoutCalls = append(f.logoutCalls, accessToken+"|"+refreshToken)
	if f.logoutErr != nil {
		return nil, f.logoutErr
	}
	return &pkgapi.MessageResponse{Message: "Logged out successfully"}, nil
}

var errUnauthorized = &api.Error{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token"}

func newTestSession(client *fakeClient) (*Session, *memoryStore, *clock.Manual) {
	store := &memoryStore{}
	clk := clock.NewManual(testNow)
	return NewSession(client, store, clk, nil), store, clk
}

func TestSession_LoginPersists(t *testing.T) {
	ctx := context.Background()
	session, store, _ := newTestSession(&fakeClient{})

	data, err := session.Login(ctx, "john@example.com", "Password123")
	require.NoError(t, err)

	assert.Equal(t, "user-1", data.UserID)
	assert.Equal(t, "access-1", store.data.AccessToken)
	assert.True(t, testNow.Add(15*time.Minute).Equal(store.data.AccessExpiresAt))
	assert.True(t, testNow.Add(2*time.Hour).Equal(store.data.RefreshExpiresAt))

	current, err := session.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", current.Email)
}

func TestSession_LoginFailure(t *testing.T) {
	session, store, _ := newTestSession(&fakeClient{
		loginErr: &api.Error{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"},
	})

	_, err := session.Login(context.Background(), "john@example.com", "wrong")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.Nil(t, store.data)
}

func TestSession_Register(t *testing.T) {
	session, store, _ := newTestSession(&fakeClient{})

	data, err := session.Register(context.Background(), pkgapi.RegisterRequest{Email: "jane@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", data.Email)
	assert.NotNil(t, store.data)
}

func TestSession_Do(t *testing.T) {
	tests := []struct {
		name        string
		advance     time.Duration
		firstErr    error
		refreshErr  error
		wantTokens  []string
		wantErr     error
		wantSession bool
	}{
		{
			name:        "valid token used as is",
			wantTokens:  []string{"access-1"},
			wantSession: true,
		},
		{
			name:        "expired access refreshed up front",
			advance:     15 * time.Minute,
			wantTokens:  []string{"access-2"},
			wantSession: true,
		},
		{
			name:        "server 401 triggers one retry",
			firstErr:    errUnauthorized,
			wantTokens:  []string{"access-1", "access-2"},
			wantSession: true,
		},
		{
			name:       "rejected refresh drops session",
			firstErr:   errUnauthorized,
			refreshErr: errUnauthorized,
			wantTokens: []string{"access-1"},
			wantErr:    ErrSessionExpired,
		},
		{
			name:       "refresh token past expiry",
			advance:    3 * time.Hour,
			wantTokens: nil,
			wantErr:    ErrSessionExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			client := &fakeClient{}
			session, store, clk := newTestSession(client)

			_, err := session.Login(ctx, "john@example.com", "Password123")
			require.NoError(t, err)

			client.refreshErr = tt.refreshErr
			clk.Advance(tt.advance)

			var seen []string
			err = session.Do(ctx, func(token string) error {
				seen = append(seen, token)
				if len(seen) == 1 && tt.firstErr != nil {
					return tt.firstErr
				}
				return nil
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantTokens, seen)
			assert.Equal(t, tt.wantSession, store.data != nil)
		})
	}
}

func TestSession_DoPropagatesOtherErrors(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	session, _, _ := newTestSession(client)
	_, err := session.Login(ctx, "john@example.com", "Password123")
	require.NoError(t, err)

	forbidden := &api.Error{StatusCode: http.StatusForbidden, Message: "nope"}
	err = session.Do(ctx, func(string) error { return forbidden })

	assert.ErrorIs(t, err, forbidden)
	assert.Equal(t, 0, client.refreshes)
}

func TestSession_DoWithoutSession(t *testing.T) {
	session, _, _ := newTestSession(&fakeClient{})

	err := session.Do(context.Background(), func(string) error { return nil })

	assert.ErrorIs(t, err, storage.ErrAuthNotFound)
}

func TestSession_Logout(t *testing.T) {
	t.Run("revokes and clears", func(t *testing.T) {
		ctx := context.Background()
		client := &fakeClient{}
		session, store, _ := newTestSession(client)
		_, err := session.Login(ctx, "john@example.com", "Password123")
		require.NoError(t, err)

		require.NoError(t, session.Logout(ctx))

		assert.Equal(t, []string{"access-1|refresh-1"}, client.logoutCalls)
		assert.Nil(t, store.data)
	})

	t.Run("server failure still clears local session", func(t *testing.T) {
		ctx := context.Background()
		client := &fakeClient{logoutErr: errors.New("connection refused")}
		session, store, _ := newTestSession(client)
		_, err := session.Login(ctx, "john@example.com", "Password123")
		require.NoError(t, err)

		assert.Error(t, session.Logout(ctx))
		assert.Nil(t, store.data)
	})

	t.Run("expired access refreshed before revoke", func(t *testing.T) {
		ctx := context.Background()
		client := &fakeClient{}
		session, _, clk := newTestSession(client)
		_, err := session.Login(ctx, "john@example.com", "Password123")
		require.NoError(t, err)

		clk.Advance(20 * time.Minute)
		require.NoError(t, session.Logout(ctx))

		assert.Equal(t, []string{"access-2|refresh-2"}, client.logoutCalls)
	})

	t.Run("not logged in", func(t *testing.T) {
		session, _, _ := newTestSession(&fakeClient{})
		assert.ErrorIs(t, session.Logout(context.Background()), storage.ErrAuthNotFound)
	})
}

func TestSession_RememberPortfolio(t *testing.T) {
	ctx := context.Background()
	session, store, _ := newTestSession(&fakeClient{})

	assert.ErrorIs(t, session.RememberPortfolio(ctx, "p-1"), storage.ErrAuthNotFound)

	_, err := session.Login(ctx, "john@example.com", "Password123")
	require.NoError(t, err)

	require.NoError(t, session.RememberPortfolio(ctx, "p-1"))
	assert.Equal(t, "p-1", store.data.PortfolioID)
}

package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ledgerchat/pkg/cookie"
)

const secret = "this-is-a-very-long-secret-key-32-chars-long"

func roundTrip(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secrets []string
		wantErr error
	}{
		{"no secrets", nil, nil},
		{"empty secrets are dropped", []string{"", ""}, nil},
		{"short secret", []string{"short"}, cookie.ErrSecretTooShort},
		{"valid secret", []string{secret}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := cookie.New(tt.secrets)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestManager_SetGetDelete(t *testing.T) {
	t.Parallel()
	m, err := cookie.New(nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.Set(w, "has_selected_company", "true")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "/", cookies[0].Path)
	assert.Equal(t, 0, cookies[0].MaxAge)
	assert.True(t, cookies[0].Expires.IsZero(), "flags are session cookies")
	assert.True(t, cookies[0].HttpOnly)

	got, err := m.Get(roundTrip(w), "has_selected_company")
	require.NoError(t, err)
	assert.Equal(t, "true", got)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "has_selected_company")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)

	w = httptest.NewRecorder()
	m.Delete(w, "has_selected_company")
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Equal(t, "/", cookies[0].Path)
}

func TestManager_Options(t *testing.T) {
	t.Parallel()
	m, err := cookie.New(nil, cookie.WithDomain("example.com"), cookie.WithSecure(true))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.Set(w, "a", "b", cookie.WithHTTPOnly(false), cookie.WithMaxAge(60))

	c := w.Result().Cookies()[0]
	assert.Equal(t, "example.com", c.Domain)
	assert.True(t, c.Secure)
	assert.False(t, c.HttpOnly)
	assert.Equal(t, 60, c.MaxAge)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		m, err := cookie.New([]string{secret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(w, "auth_token", "tok-123"))

		got, err := m.GetSigned(roundTrip(w), "auth_token")
		require.NoError(t, err)
		assert.Equal(t, "tok-123", got)
	})

	t.Run("tampered value", func(t *testing.T) {
		m, err := cookie.New([]string{secret})
		require.NoError(t, err)

		signed, err := m.Sign("tok-123")
		require.NoError(t, err)
		other, err := m.Sign("tok-999")
		require.NoError(t, err)

		// value of one token with the signature of another
		otherValue, _, _ := strings.Cut(other, "|")
		_, sig, _ := strings.Cut(signed, "|")
		_, err = m.Verify(otherValue + "|" + sig)
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)

		_, err = m.Verify("no-separator")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})

	t.Run("rotation", func(t *testing.T) {
		oldSecret := "this-is-old-very-long-secret-key-32-chars-ok"
		old, err := cookie.New([]string{oldSecret})
		require.NoError(t, err)
		rotated, err := cookie.New([]string{secret, oldSecret})
		require.NoError(t, err)
		fresh, err := cookie.New([]string{secret})
		require.NoError(t, err)

		signed, err := old.Sign("tok")
		require.NoError(t, err)

		got, err := rotated.Verify(signed)
		require.NoError(t, err)
		assert.Equal(t, "tok", got)

		_, err = fresh.Verify(signed)
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("no secret", func(t *testing.T) {
		m, err := cookie.New(nil)
		require.NoError(t, err)
		_, err = m.Sign("x")
		assert.ErrorIs(t, err, cookie.ErrNoSecret)
		assert.ErrorIs(t, m.SetSigned(httptest.NewRecorder(), "a", "b"), cookie.ErrNoSecret)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	cfg := cookie.DefaultConfig()
	cfg.Secrets = " " + secret + " , "
	cfg.Domain = "app.example.com"

	m, err := cookie.NewFromConfig(cfg)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(w, "auth_token", "tok"))
	c := w.Result().Cookies()[0]
	assert.Equal(t, "app.example.com", c.Domain)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

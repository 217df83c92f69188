package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/greenprompt/backend/internal/logging"
	"github.com/ayush/greenprompt/backend/internal/models"
)

func newTestHandler(t *testing.T, th *Throttle) (*Handler, *TokenIssuer) {
	t.Helper()
	tokens := NewTokenIssuer("secret", time.Hour)
	svc := NewService(newFakeUserStore(), bcrypt.MinCost)
	return NewHandler(svc, tokens, th, logging.Discard(), false), tokens
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) *models.PublicUser {
	t.Helper()
	var resp models.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.User
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestSignup(t *testing.T) {
	h, tokens := newTestHandler(t, nil)

	rec := post(h.Signup, `{"email":"a@x.com","password":"pw1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	u := decodeUser(t, rec)
	require.NotNil(t, u)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	c := sessionCookie(rec)
	require.NotNil(t, c)
	id, err := tokens.Verify(c.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestSignup_Errors(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	assert.Equal(t, http.StatusBadRequest, post(h.Signup, `{"email":"a@x.com"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h.Signup, `not json`).Code)

	require.Equal(t, http.StatusOK, post(h.Signup, `{"email":"a@x.com","password":"pw1"}`).Code)
	rec := post(h.Signup, `{"email":"a@x.com","password":"other"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Nil(t, sessionCookie(rec))
}

func TestLogin(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	require.Equal(t, http.StatusOK, post(h.Signup, `{"email":"a@x.com","password":"pw1"}`).Code)

	rec := post(h.Login, `{"email":"a@x.com","password":"pw1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", decodeUser(t, rec).Email)
	assert.NotNil(t, sessionCookie(rec))

	assert.Equal(t, http.StatusBadRequest, post(h.Login, `{"password":"pw1"}`).Code)
}

func TestLogin_DoesNotRevealEmailExistence(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	require.Equal(t, http.StatusOK, post(h.Signup, `{"email":"a@x.com","password":"pw1"}`).Code)

	wrongPw := post(h.Login, `{"email":"a@x.com","password":"wrongpw"}`)
	unknown := post(h.Login, `{"email":"ghost@x.com","password":"wrongpw"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	assert.Nil(t, sessionCookie(wrongPw))
}

func TestLogin_Throttled(t *testing.T) {
	th, _ := newTestThrottle(t, 2)
	h, _ := newTestHandler(t, th)
	require.Equal(t, http.StatusOK, post(h.Signup, `{"email":"a@x.com","password":"pw1"}`).Code)

	assert.Equal(t, http.StatusUnauthorized, post(h.Login, `{"email":"a@x.com","password":"bad"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, post(h.Login, `{"email":"a@x.com","password":"bad"}`).Code)

	// correct password is refused while locked out
	assert.Equal(t, http.StatusTooManyRequests, post(h.Login, `{"email":"a@x.com","password":"pw1"}`).Code)
}

func TestLogin_ThrottledAcrossAddresses(t *testing.T) {
	th, _ := newTestThrottle(t, 3)
	h, _ := newTestHandler(t, th)
	require.Equal(t, http.StatusOK, post(h.Signup, `{"email":"a@x.com","password":"pw1"}`).Code)

	login := func(addr, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.Login(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		addr := fmt.Sprintf("10.0.0.%d:4000", i+10)
		assert.Equal(t, http.StatusUnauthorized, login(addr, `{"email":"a@x.com","password":"bad"}`))
	}
	assert.Equal(t, http.StatusTooManyRequests, login("10.0.0.99:4000", `{"email":"A@x.com","password":"pw1"}`))

	// other accounts from a fresh address are unaffected
	assert.Equal(t, http.StatusUnauthorized, login("10.0.0.98:4000", `{"email":"b@x.com","password":"bad"}`))
}

func TestLogoutAndMe(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := post(h.Logout, ``)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Less(t, c.MaxAge, 0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), &models.User{ID: 3, Email: "c@x.com"}))
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	assert.JSONEq(t, `{"user":{"id":3,"email":"c@x.com"}}`, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", bytes.NewReader(nil))
	req.RemoteAddr = "192.168.1.7:4000"
	assert.Equal(t, "192.168.1.7", clientIP(req))

	req.RemoteAddr = "192.168.1.7"
	assert.Equal(t, "192.168.1.7", clientIP(req))
}

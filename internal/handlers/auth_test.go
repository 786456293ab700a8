package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"stichting-asha/internal/models"
	"stichting-asha/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	srv      *testServer
	users    *fakeUsers
	resets   *fakeResets
	mailer   *fakeMailer
	activity *fakeActivity
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("geheim123"), bcrypt.MinCost)
	require.NoError(t, err)

	f := &authFixture{
		users: newFakeUsers(models.User{
			ID:       primitive.NewObjectID(),
			Name:     "Ronald Kalka",
			Email:    "ronald@example.org",
			Password: string(hash),
			Role:     models.RoleBeheerder,
		}),
		resets:   &fakeResets{},
		mailer:   &fakeMailer{},
		activity: &fakeActivity{},
	}

	h := NewAuthHandler(f.users, f.resets, auth.NewJWTManager("test-secret", time.Hour), f.mailer, f.activity, nullLogger())
	h.resetCost = bcrypt.MinCost
	h.now = func() time.Time { return testNow }
	f.srv = newTestServer(t, &API{Auth: h})
	return f
}

func (f *authFixture) addReset(token string, used bool, expires time.Time) {
	f.resets.resets = append(f.resets.resets, models.PasswordReset{
		ID:      primitive.NewObjectID(),
		Email:   "ronald@example.org",
		Token:   token,
		Used:    used,
		Expires: expires,
	})
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)

	w := f.srv.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ronald@example.org", "password": "geheim123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[AuthResponse](t, w)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ronald Kalka", resp.User.Name)
	assert.NotContains(t, w.Body.String(), "password")

	claims, err := f.srv.jwt.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleBeheerder, claims.Role)
}

func TestLogin_Rejected(t *testing.T) {
	f := newAuthFixture(t)

	w := f.srv.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ronald@example.org", "password": "fout"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, msgInvalidCredentials, errorOf(t, w))

	w = f.srv.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "niemand@example.org", "password": "geheim123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, msgInvalidCredentials, errorOf(t, w))

	w = f.srv.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ronald@example.org"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	f := newAuthFixture(t)

	w := f.srv.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Niet ingelogd", errorOf(t, w))

	w = f.srv.do(http.MethodGet, "/api/auth/me", models.RoleStagiair, nil)
	require.Equal(t, http.StatusOK, w.Code)
	s := decode[auth.Session](t, w)
	assert.Equal(t, models.RoleStagiair, s.Role)
	assert.Equal(t, "u1", s.UserID)
}

func TestForgotPassword_SameAnswerForUnknownAddress(t *testing.T) {
	f := newAuthFixture(t)

	known := f.srv.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ronald@example.org"})
	unknown := f.srv.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "niemand@example.org"})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.JSONEq(t, known.Body.String(), unknown.Body.String())

	require.Len(t, f.resets.resets, 1)
	reset := f.resets.resets[0]
	assert.Equal(t, "ronald@example.org", reset.Email)
	assert.True(t, reset.Expires.Equal(testNow.Add(time.Hour)))
	assert.Equal(t, []string{reset.Token}, f.mailer.resets)
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.addReset("tok", false, testNow.Add(30*time.Minute))

	w := f.srv.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": "tok", "password": "nieuwwachtwoord"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"Wachtwoord is succesvol gereset"}`, w.Body.String())

	hash := f.users.passwords["ronald@example.org"]
	require.NotEmpty(t, hash)
	assert.True(t, auth.CheckPassword(hash, "nieuwwachtwoord"))
	assert.True(t, f.resets.resets[0].Used)

	entries := f.activity.all()
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntityUser, entries[0].EntityType)

	// single use
	w = f.srv.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": "tok", "password": "nogeenkeer123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidToken, errorOf(t, w))
}

func TestResetPassword_ConcurrentRequestsShareOneTicket(t *testing.T) {
	f := newAuthFixture(t)
	f.addReset("tok", false, testNow.Add(30*time.Minute))

	const attempts = 8
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := f.srv.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{
				"token":    "tok",
				"password": fmt.Sprintf("nieuwwachtwoord%d", i),
			})
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, code := range codes {
		if code == http.StatusOK {
			ok++
			continue
		}
		assert.Equal(t, http.StatusBadRequest, code)
	}
	assert.Equal(t, 1, ok)
	assert.True(t, f.resets.resets[0].Used)
	assert.Len(t, f.activity.all(), 1)
}

func TestResetPassword_UsedAndExpiredLookAlike(t *testing.T) {
	f := newAuthFixture(t)
	f.addReset("used", true, testNow.Add(time.Hour))
	f.addReset("expired", false, testNow.Add(-time.Minute))

	used := f.srv.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": "used", "password": "nieuwwachtwoord"})
	expired := f.srv.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": "expired", "password": "nieuwwachtwoord"})
	unknown := f.srv.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": "nope", "password": "nieuwwachtwoord"})

	assert.Equal(t, http.StatusBadRequest, used.Code)
	assert.Equal(t, http.StatusBadRequest, expired.Code)
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, used.Body.String(), expired.Body.String())
	assert.Equal(t, used.Body.String(), unknown.Body.String())
	assert.Empty(t, f.users.passwords)
}

func TestResetPassword_Validation(t *testing.T) {
	f := newAuthFixture(t)
	f.addReset("tok", false, testNow.Add(time.Hour))

	w := f.srv.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": "tok"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgResetRequired, errorOf(t, w))

	w = f.srv.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": "tok", "password": "kort"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgPasswordTooShort, errorOf(t, w))
	assert.False(t, f.resets.resets[0].Used)
}

func TestResetPassword_UserGone(t *testing.T) {
	f := newAuthFixture(t)
	f.resets.resets = append(f.resets.resets, models.PasswordReset{
		ID:      primitive.NewObjectID(),
		Email:   "weg@example.org",
		Token:   "tok",
		Expires: testNow.Add(time.Hour),
	})

	w := f.srv.do(http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": "tok", "password": "nieuwwachtwoord"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgUserNotFound, errorOf(t, w))
}

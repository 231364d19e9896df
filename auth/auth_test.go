package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prakhar3125/ExpenseFlow-backend/config"
	"github.com/prakhar3125/ExpenseFlow-backend/models"
	"github.com/prakhar3125/ExpenseFlow-backend/repository"
)

type fakeUsers map[int64]*models.User

func (f fakeUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeFirebase struct {
	token *fbauth.Token
	err   error
}

func (f fakeFirebase) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	return f.token, f.err
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, h.Matches(hash, "s3cret"))
	assert.False(t, h.Matches(hash, "wrong"))
	assert.False(t, h.Matches("not-a-hash", "s3cret"))

	other, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes are salted")

	_, err = h.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "expenseflow", time.Hour)
	u := &models.User{ID: 42, Email: "a@x.com"}

	signed, err := m.Issue(u)
	require.NoError(t, err)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "expenseflow", claims.Issuer)

	id, err := m.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 42, Email: "a@x.com"}, id)
}

func TestTokenRejections(t *testing.T) {
	u := &models.User{ID: 1, Email: "a@x.com"}
	m := NewTokenManager("secret", "expenseflow", time.Hour)

	expired := NewTokenManager("secret", "expenseflow", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(u)
	require.NoError(t, err)

	foreign, err := NewTokenManager("other", "expenseflow", time.Hour).Issue(u)
	require.NoError(t, err)

	wrongIssuer, err := NewTokenManager("secret", "someone-else", time.Hour).Issue(u)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		token string
	}{
		{"expired", expiredToken},
		{"wrong secret", foreign},
		{"wrong issuer", wrongIssuer},
		{"alg none", noneToken},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Verify(context.Background(), tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = m.Parse(expiredToken)
	assert.True(t, IsExpired(err))
}

func TestChain(t *testing.T) {
	m := NewTokenManager("secret", "", time.Hour)
	signed, err := m.Issue(&models.User{ID: 3, Email: "c@x.com"})
	require.NoError(t, err)

	failing := NewFirebaseVerifier(fakeFirebase{err: errors.New("bad firebase token")}, fakeUsers{})

	id, err := Chain{failing, m}.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id.UserID)

	_, err = Chain{failing}.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Chain{}.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExistingUser(t *testing.T) {
	m := NewTokenManager("secret", "", time.Hour)
	users := fakeUsers{1: {ID: 1, Email: "a@x.com"}}
	v := ExistingUser{Next: m, Users: users}

	live, err := m.Issue(users[1])
	require.NoError(t, err)
	id, err := v.Verify(context.Background(), live)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.UserID)

	gone, err := m.Issue(&models.User{ID: 99, Email: "gone@x.com"})
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), gone)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFirebaseVerifier(t *testing.T) {
	users := fakeUsers{7: {ID: 7, Email: "fb@x.com"}}

	testCases := []struct {
		name    string
		claims  map[string]interface{}
		wantID  int64
		wantErr bool
	}{
		{name: "known email", claims: map[string]interface{}{"email": "FB@x.com", "email_verified": true}, wantID: 7},
		{name: "unverified email", claims: map[string]interface{}{"email": "fb@x.com", "email_verified": false}, wantErr: true},
		{name: "no email", claims: map[string]interface{}{}, wantErr: true},
		{name: "unknown email", claims: map[string]interface{}{"email": "new@x.com"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewFirebaseVerifier(fakeFirebase{token: &fbauth.Token{UID: "uid", Claims: tc.claims}}, users)
			id, err := v.Verify(context.Background(), "id-token")
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, id.UserID)
		})
	}
}

func TestCredentialsOption(t *testing.T) {
	_, err := credentialsOption(config.FirebaseConfig{})
	assert.Error(t, err)

	_, err = credentialsOption(config.FirebaseConfig{CredentialsBase64: "%%%"})
	assert.Error(t, err)

	opt, err := credentialsOption(config.FirebaseConfig{CredentialsJSON: `{"type":"service_account"}`})
	require.NoError(t, err)
	assert.NotNil(t, opt)
}

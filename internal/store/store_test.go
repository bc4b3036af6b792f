package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionComplete(t *testing.T) {
	tests := []struct {
		name string
		sess *Session
		want bool
	}{
		{"nil", nil, false},
		{"full triple", &Session{AccessToken: "a", RefreshToken: "r", UserID: "u"}, true},
		{"missing access token", &Session{RefreshToken: "r", UserID: "u"}, false},
		{"missing refresh token", &Session{AccessToken: "a", UserID: "u"}, false},
		{"missing user id", &Session{AccessToken: "a", RefreshToken: "r"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sess.Complete())
		})
	}
}

func TestWriteSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := WriteSession(ctx, s, &Session{
		AccessToken:    "A",
		RefreshToken:   "R",
		UserID:         "U",
		ExpirationDate: "2024-03-10T12:00:00Z",
	})
	require.NoError(t, err)

	sess, err := ReadSession(ctx, s)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "A", sess.AccessToken)
	assert.Equal(t, "R", sess.RefreshToken)
	assert.Equal(t, "U", sess.UserID)
	assert.Equal(t, "2024-03-10T12:00:00Z", sess.ExpirationDate)
	assert.NotZero(t, sess.Version)
}

func TestWriteSessionStampsNewVersion(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := &Session{AccessToken: "A", RefreshToken: "R", UserID: "U"}
	require.NoError(t, WriteSession(ctx, s, first))

	second := &Session{AccessToken: "A2", RefreshToken: "R2", UserID: "U"}
	require.NoError(t, WriteSession(ctx, s, second))

	sess, err := ReadSession(ctx, s)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "A2", sess.AccessToken)
	assert.Greater(t, sess.Version, first.Version)
}

func TestReadSessionAbsent(t *testing.T) {
	sess, err := ReadSession(context.Background(), NewMemoryStore())
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestReadSessionLegacyKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, KeyAccessToken, "A"))
	require.NoError(t, s.Set(ctx, KeyRefreshToken, "R"))
	require.NoError(t, s.Set(ctx, KeyUserID, "U"))
	require.NoError(t, s.Set(ctx, KeyExpirationDate, "3/10/2024, 12:00:00 PM"))

	sess, err := ReadSession(ctx, s)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "A", sess.AccessToken)
	assert.Equal(t, "3/10/2024, 12:00:00 PM", sess.ExpirationDate)
}

func TestReadSessionLegacyPartialTupleIsAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, KeyAccessToken, "A"))
	// No refresh token.

	sess, err := ReadSession(ctx, s)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestReadSessionCorruptRecordIsAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, KeySession, "{not json"))

	sess, err := ReadSession(ctx, s)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

// faultyStore fails every operation, standing in for an unavailable backend.
type faultyStore struct{}

func (faultyStore) Get(context.Context, string) (string, error) {
	return "", errors.New("backend down")
}
func (faultyStore) Set(context.Context, string, string) error { return errors.New("backend down") }
func (faultyStore) Delete(context.Context, string) error      { return errors.New("backend down") }

func TestReadSessionStorageFaultIsAbsent(t *testing.T) {
	sess, err := ReadSession(context.Background(), faultyStore{})
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestClearSessionSurvivesFaults(t *testing.T) {
	// Must not panic or abort mid-sweep.
	ClearSession(context.Background(), faultyStore{})
}

func TestClearSessionRemovesEverything(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, WriteSession(ctx, s, &Session{AccessToken: "A", RefreshToken: "R", UserID: "U"}))
	require.NoError(t, s.Set(ctx, KeyAccessToken, "A"))
	require.NoError(t, s.Set(ctx, KeyTheme, "dark"))

	ClearSession(ctx, s)

	_, err := s.Get(ctx, KeySession)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, KeyAccessToken)
	assert.ErrorIs(t, err, ErrNotFound)

	// Theme is not session data and survives logout.
	theme, err := s.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
}

func TestSessionJSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(&Session{AccessToken: "A", RefreshToken: "R", UserID: "U"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Contains(t, m, "accessToken")
	assert.Contains(t, m, "refreshToken")
	assert.Contains(t, m, "userId")
}

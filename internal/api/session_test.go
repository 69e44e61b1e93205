package api

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadGuard(t *testing.T) {
	var g uploadGuard

	assert.True(t, g.acquire("a"))
	assert.False(t, g.acquire("a"))
	assert.True(t, g.acquire("b"), "sessions are independent")

	g.release("a")
	assert.True(t, g.acquire("a"))
}

func TestUploadGuard_OneWinnerUnderContention(t *testing.T) {
	var g uploadGuard
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.acquire("same") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())
}

func TestSessionManager_RoundTrip(t *testing.T) {
	m := NewSessionManager([]byte("0123456789abcdef0123456789abcdef"), false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, fresh, err := m.load(req)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.NotEmpty(t, sess.ID)

	sess.ReportID = 42
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, req, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	loaded, fresh, err := m.load(next)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.EqualValues(t, 42, loaded.ReportID)
}

func TestSessionManager_RejectsForeignCookie(t *testing.T) {
	signer := NewSessionManager([]byte("0123456789abcdef0123456789abcdef"), false)
	verifier := NewSessionManager([]byte("fedcba9876543210fedcba9876543210"), false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _, _ := signer.load(req)
	sess.ReportID = 7
	rec := httptest.NewRecorder()
	require.NoError(t, signer.Save(rec, req, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	loaded, fresh, err := verifier.load(next)
	assert.Error(t, err)
	assert.True(t, fresh)
	assert.NotEqual(t, sess.ID, loaded.ID)
	assert.Zero(t, loaded.ReportID)
}

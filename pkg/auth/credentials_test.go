package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	store := NewMockStore()
	m := &Manager{stores: []CredentialStore{store}}

	account := &Account{Email: "user@example.org", Password: "hunter2"}
	require.NoError(t, m.Store(account))
	assert.False(t, account.LastModified.IsZero())

	got, err := m.Retrieve("user@example.org")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got.Password)
}

func TestManagerValidatesAccount(t *testing.T) {
	m := &Manager{stores: []CredentialStore{NewMockStore()}}

	assert.Error(t, m.Store(&Account{Password: "hunter2"}))
	assert.Error(t, m.Store(&Account{Email: "user@example.org"}))
}

func TestManagerFallsBackAcrossStores(t *testing.T) {
	broken := NewMockStore()
	broken.FailStores(errors.New("keychain locked"))
	working := NewMockStore()
	m := &Manager{stores: []CredentialStore{broken, working}}

	require.NoError(t, m.Store(&Account{Email: "user@example.org", Password: "hunter2"}))

	assert.False(t, broken.Exists("user@example.org"))
	assert.True(t, working.Exists("user@example.org"))

	got, err := m.Retrieve("user@example.org")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got.Password)
}

func TestManagerListPrefersNewest(t *testing.T) {
	older := NewMockStore()
	older.Store(&Account{Email: "user@example.org", Password: "old", LastModified: time.Now().Add(-time.Hour)})
	newer := NewMockStore()
	newer.Store(&Account{Email: "user@example.org", Password: "new", LastModified: time.Now()})

	m := &Manager{stores: []CredentialStore{older, newer}}
	accounts, err := m.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "new", accounts[0].Password)
}

func TestManagerDelete(t *testing.T) {
	store := NewMockStore()
	store.Store(&Account{Email: "user@example.org", Password: "hunter2"})
	m := &Manager{stores: []CredentialStore{store}}

	require.NoError(t, m.Delete("user@example.org"))
	assert.Error(t, m.Delete("user@example.org"))
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("STUDYSNATCHER_EMAIL", "env@example.org")
	t.Setenv("STUDYSNATCHER_PASSWORD", "envpass")

	store := NewEnvironmentStore()

	got, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "env@example.org", got.Email)
	assert.Equal(t, "envpass", got.Password)

	// A named account must match the environment's email
	_, err = store.Retrieve("other@example.org")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	assert.ErrorIs(t, store.Store(&Account{Email: "x", Password: "y"}), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("env@example.org"), ErrStoreUnavailable)
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("STUDYSNATCHER_PASSPHRASE", "test-passphrase")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	account := &Account{Email: "user@example.org", Password: "hunter2", LastModified: time.Now()}
	require.NoError(t, store.Store(account))

	// A fresh store with the same passphrase can decrypt
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	got, err := reopened.Retrieve("user@example.org")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got.Password)

	accounts, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	require.NoError(t, reopened.Delete("user@example.org"))
	_, err = reopened.Retrieve("user@example.org")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv("STUDYSNATCHER_PASSPHRASE", "right")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Account{Email: "user@example.org", Password: "hunter2"}))

	t.Setenv("STUDYSNATCHER_PASSPHRASE", "wrong")
	intruder, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = intruder.Retrieve("user@example.org")
	assert.Error(t, err)
}

func TestSanitizeAccount(t *testing.T) {
	account := &Account{Email: "user@example.org", Password: "supersecretpassword"}
	clean := SanitizeAccount(account)

	assert.Equal(t, "user@example.org", clean.Email)
	assert.NotContains(t, clean.Password, "supersecret")
	assert.Equal(t, "su...rd", clean.Password)

	// Short passwords are fully masked
	clean = SanitizeAccount(&Account{Email: "x", Password: "short"})
	assert.Equal(t, "********", clean.Password)

	assert.Nil(t, SanitizeAccount(nil))
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *KV {
	t.Helper()
	kv, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestKV_SetGetDelete(t *testing.T) {
	kv := openTemp(t)

	_, ok, err := kv.Get(KeyTheme)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(KeyTheme, "light"))
	require.NoError(t, kv.Set(KeyTheme, "dark"))

	v, ok, err := kv.Get(KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	require.NoError(t, kv.Set(KeyActiveThread, "t-1"))
	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyActiveThread, KeyTheme}, keys)

	require.NoError(t, kv.Delete(KeyTheme, "missing"))
	_, ok, _ = kv.Get(KeyTheme)
	assert.False(t, ok)
}

func TestKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	kv, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, SetInt(kv, KeyGuestCount, 2))
	require.NoError(t, kv.SetSecret(KeyToken, "header.payload.sig"))
	require.NoError(t, kv.Close())

	kv, err = Open(path)
	require.NoError(t, err)
	defer kv.Close()

	n, err := GetInt(kv, KeyGuestCount)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tok, ok, err := kv.GetSecret(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "header.payload.sig", tok)
}

func TestKV_SecretIsNotStoredInPlaintext(t *testing.T) {
	kv := openTemp(t)
	require.NoError(t, kv.SetSecret(KeyToken, "super-secret-token"))

	raw, ok, err := kv.Get(KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(raw, SealedPrefix))
	assert.NotContains(t, raw, "super-secret-token")
}

func TestKV_KeyFilePermissions(t *testing.T) {
	dir := t.TempDir()
	kv, err := Open(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	defer kv.Close()

	info, err := os.Stat(filepath.Join(dir, ".state.key"))
	require.NoError(t, err)
	if info.Mode().Perm()&0o077 != 0 {
		t.Errorf("key file permissions too open: %o", info.Mode().Perm())
	}
}

func TestSealer_RejectsTampering(t *testing.T) {
	s, err := NewSealer([]byte("secret-material-for-tests-000000"), []byte("salt"))
	require.NoError(t, err)

	sealed, err := s.Seal("token")
	require.NoError(t, err)

	tampered := sealed[:len(sealed)-2] + "AA"
	if tampered == sealed {
		tampered = sealed[:len(sealed)-2] + "BB"
	}
	_, err = s.Open(tampered)
	assert.Error(t, err)

	_, err = s.Open("plain")
	assert.True(t, errors.Is(err, ErrInvalidSealed))

	other, err := NewSealer([]byte("different-material-for-tests-000"), []byte("salt"))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.True(t, errors.Is(err, ErrUnsealFailed))
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("a", "1"))
	assert.Equal(t, "1", GetString(m, "a", "x"))
	assert.Equal(t, "x", GetString(m, "b", "x"))

	n, err := GetInt(m, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, m.Set("a", "garbage"))
	n, err = GetInt(m, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, m.Delete("a"))
	_, ok, _ := m.Get("a")
	assert.False(t, ok)
}

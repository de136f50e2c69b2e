package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providers(t *testing.T) map[string]IterableProvider {
	t.Helper()
	mem, err := NewMemLevelDBProvider()
	require.NoError(t, err)
	level, err := NewLevelDBProvider(filepath.Join(t.TempDir(), "level"))
	require.NoError(t, err)
	bolt, err := NewBoltProvider(filepath.Join(t.TempDir(), "jetton.db"))
	require.NoError(t, err)

	out := map[string]IterableProvider{"memory": mem, "leveldb": level, "bolt": bolt}
	t.Cleanup(func() {
		for _, p := range out {
			_ = p.Close()
		}
	})
	return out
}

func TestProviderBasicOps(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			v, err := p.Get([]byte("missing"))
			require.NoError(t, err)
			assert.Nil(t, v)

			require.NoError(t, p.Put([]byte("k1"), []byte("v1")))
			v, err = p.Get([]byte("k1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), v)

			ok, err := p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.True(t, ok)

			got, err := p.GetBatch([][]byte{[]byte("k1"), []byte("nope")})
			require.NoError(t, err)
			assert.Equal(t, map[string][]byte{"k1": []byte("v1")}, got)

			require.NoError(t, p.Delete([]byte("k1")))
			ok, err = p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestProviderIteratePrefix(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"a:2", "a:1", "b:1", "a:3"} {
				require.NoError(t, p.Put([]byte(k), []byte("x"+k)))
			}
			var keys []string
			require.NoError(t, p.IteratePrefix([]byte("a:"), func(key, value []byte) bool {
				keys = append(keys, string(key))
				assert.Equal(t, "x"+string(key), string(value))
				return true
			}))
			assert.Equal(t, []string{"a:1", "a:2", "a:3"}, keys)

			keys = nil
			require.NoError(t, p.IteratePrefix([]byte("a:"), func(key, _ []byte) bool {
				keys = append(keys, string(key))
				return false
			}))
			assert.Equal(t, []string{"a:1"}, keys)
		})
	}
}

func TestDBTxManagerCommitsOrDiscards(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			tm := NewDBTxManager(p)

			err := tm.WithBatch(func(b DatabaseBatch) error {
				b.Put([]byte("x"), []byte("1"))
				b.Put([]byte("y"), []byte("2"))
				return nil
			})
			require.NoError(t, err)
			got, err := p.GetBatch([][]byte{[]byte("x"), []byte("y")})
			require.NoError(t, err)
			assert.Len(t, got, 2)

			boom := errors.New("boom")
			err = tm.WithBatch(func(b DatabaseBatch) error {
				b.Put([]byte("z"), []byte("3"))
				b.Delete([]byte("x"))
				return boom
			})
			assert.ErrorIs(t, err, boom)
			ok, _ := p.Has([]byte("z"))
			assert.False(t, ok)
			ok, _ = p.Has([]byte("x"))
			assert.True(t, ok)
		})
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	p, err := NewMemLevelDBProvider()
	require.NoError(t, err)
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}

package param

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireStoreCode(t *testing.T, err error, code byte) {
	var se *StoreError
	require.True(t, errors.As(err, &se), "%v", err)
	require.Equal(t, code, se.Code)
}

func TestCRC16(t *testing.T) {
	require.Equal(t, uint16(0x29b1), CRC16([]byte("123456789")))
	require.Equal(t, uint16(0xffff), CRC16(nil))
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "params.yaml"))
	p := Defaults()
	p.MACAddr = MAC{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	p.DumpDirs, p.TestPLen = 0x0f, 1500
	require.NoError(t, s.Save(&p))

	data, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	require.Contains(t, string(data), "mac_addr: aa:bb:cc:dd:ee:ff")

	loaded := Defaults()
	require.NoError(t, s.Load(&loaded))
	require.Equal(t, p, loaded)
}

func TestFileStoreMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.yaml"))
	p := Defaults()
	p.LogAll = 1
	err := s.Load(&p)
	requireStoreCode(t, err, CodeNotReady)
	require.True(t, os.IsNotExist(errors.Unwrap(err)))
	require.Equal(t, byte(1), p.LogAll)
}

func TestFileStoreCorrupt(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "params.yaml"))
	p := Defaults()
	require.NoError(t, s.Save(&p))
	data, err := os.ReadFile(s.Path)
	require.NoError(t, err)

	t.Run("tampered value", func(t *testing.T) {
		tampered := strings.Replace(string(data), "test_plen: 1514", "test_plen: 60", 1)
		require.NotEqual(t, string(data), tampered)
		require.NoError(t, os.WriteFile(s.Path, []byte(tampered), 0644))
		v := Defaults()
		v.FullDuplex = 1
		requireStoreCode(t, s.Load(&v), CodeCRCMismatch)
		require.Equal(t, byte(1), v.FullDuplex)
		require.Equal(t, uint16(1514), v.TestPLen)
	})

	t.Run("garbage", func(t *testing.T) {
		require.NoError(t, os.WriteFile(s.Path, []byte("params: [\n"), 0644))
		v := Defaults()
		requireStoreCode(t, s.Load(&v), CodeCRCMismatch)
		require.Equal(t, Defaults(), v)
	})

	t.Run("bad mac", func(t *testing.T) {
		bad := strings.Replace(string(data), "1a:11:af:a0:47:11", "1a:11:af", 1)
		require.NoError(t, os.WriteFile(s.Path, []byte(bad), 0644))
		v := Defaults()
		requireStoreCode(t, s.Load(&v), CodeCRCMismatch)
	})
}

func TestFileStoreSaveFailure(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "no", "such", "dir", "params.yaml"))
	p := Defaults()
	requireStoreCode(t, s.Save(&p), CodeNotReady)
}

func TestStoreErrorMessage(t *testing.T) {
	err := &StoreError{Op: "save", Code: CodeNotReady}
	require.Equal(t, "param save failed: not ready (0x01)", err.Error())
	require.Equal(t, "unknown", CodeName(0x42))
}

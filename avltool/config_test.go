package avltool

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ergoplatform/avltree-go/application"
	"github.com/ergoplatform/avltree-go/avltree"
	"github.com/ergoplatform/avltree-go/crypto/hashers/blake2b256"
	"github.com/ergoplatform/avltree-go/crypto/sign"
	"github.com/ergoplatform/avltree-go/utils"
)

// writeKeyPair writes a fresh signing keypair next to the config file.
func writeKeyPair(t *testing.T, dir string) {
	t.Helper()
	sk, err := sign.GenerateKey(nil)
	require.NoError(t, err)
	pk, ok := sk.Public()
	require.True(t, ok)
	require.NoError(t, utils.WriteFile(filepath.Join(dir, "sign.priv"), sk, 0600))
	require.NoError(t, utils.WriteFile(filepath.Join(dir, "sign.pub"), pk, 0600))
}

// newToolHome writes a complete avltool home (config file and signing
// keypair) into a temp dir and loads the configuration back.
func newToolHome(t *testing.T, mutate func(*Config)) *Config {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")

	conf := NewConfig(file, "toml", &application.LoggerConfig{
		Environment: "development",
	})
	if mutate != nil {
		mutate(conf)
	}
	require.NoError(t, conf.Save())
	writeKeyPair(t, dir)

	loaded := new(Config)
	require.NoError(t, loaded.Load(file, "toml"))
	return loaded
}

func TestConfigRoundTrip(t *testing.T) {
	conf := newToolHome(t, nil)

	require.Equal(t, blake2b256.Blake2b256, conf.HasherID)
	require.Equal(t, avltree.DefaultKeyLength, conf.KeyLength)
	require.NotNil(t, conf.Hasher())
	require.Len(t, conf.SigningKey(), sign.PrivateKeySize)
	require.Len(t, conf.VerifyingKey(), sign.PublicKeySize)
	require.True(t, filepath.IsAbs(conf.HistoryDirectory))
	require.Equal(t, 16, conf.Workload.Batches)
	require.Equal(t, 64, conf.Workload.BatchSize)
	require.Equal(t, "development", conf.Logger.Environment)
}

func TestConfigLoadMissingKeys(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	require.NoError(t, NewConfig(file, "toml", nil).Save())

	require.Error(t, new(Config).Load(file, "toml"))
}

func TestConfigLoadUnknownHasher(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	conf := NewConfig(file, "toml", nil)
	conf.HasherID = "no-such-hasher"
	require.NoError(t, conf.Save())
	writeKeyPair(t, dir)

	require.Error(t, new(Config).Load(file, "toml"))
}

func TestConfigLoadMissingLogger(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	require.NoError(t, NewConfig(file, "toml", nil).Save())
	writeKeyPair(t, dir)

	err := new(Config).Load(file, "toml")
	require.ErrorContains(t, err, "[logger]")
}

func TestConfigLoadBadWorkload(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	conf := NewConfig(file, "toml", &application.LoggerConfig{Environment: "production"})
	conf.Workload.Batches = 0
	require.NoError(t, conf.Save())
	writeKeyPair(t, dir)

	err := new(Config).Load(file, "toml")
	require.ErrorContains(t, err, "batch size")
}

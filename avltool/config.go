package avltool

import (
	"fmt"

	"github.com/ergoplatform/avltree-go/application"
	"github.com/ergoplatform/avltree-go/avltree"
	"github.com/ergoplatform/avltree-go/crypto/hashers"
	"github.com/ergoplatform/avltree-go/crypto/hashers/blake2b256"
	"github.com/ergoplatform/avltree-go/crypto/sign"
	"github.com/ergoplatform/avltree-go/utils"
)

// A WorkloadConfig bounds the randomized workload driven by
// "avltool run".
type WorkloadConfig struct {
	// Batches is the number of operation batches to prove and verify.
	Batches int `toml:"batches"`
	// BatchSize is the number of operations per batch.
	BatchSize int `toml:"batch_size"`
	// Seed seeds the operation generator, making runs reproducible.
	Seed int64 `toml:"seed"`
}

// Config contains the avltool configuration: the tree parameters, the
// signing key paths, and the location of the digest history.
type Config struct {
	*application.CommonConfig

	// HasherID names the registered tree hasher labeling tree nodes.
	HasherID string `toml:"hasher"`
	// KeyLength is the length in bytes of all dictionary keys.
	KeyLength int `toml:"key_length"`

	SigningKeyPath   string `toml:"signing_key_path"`
	VerifyingKeyPath string `toml:"verifying_key_path"`
	// HistoryDirectory locates the LevelDB store holding the digest log.
	HistoryDirectory string `toml:"history_directory"`

	Workload *WorkloadConfig `toml:"workload"`

	signingKey   sign.PrivateKey
	verifyingKey sign.PublicKey
	hasher       hashers.TreeHasher
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new avltool configuration at the given file
// path with the given config encoding and logger configuration, filling
// every other field with its default.
func NewConfig(file, encoding string, logger *application.LoggerConfig) *Config {
	return &Config{
		CommonConfig:     application.NewCommonConfig(file, encoding, logger),
		HasherID:         blake2b256.Blake2b256,
		KeyLength:        avltree.DefaultKeyLength,
		SigningKeyPath:   "sign.priv",
		VerifyingKeyPath: "sign.pub",
		HistoryDirectory: "history",
		Workload: &WorkloadConfig{
			Batches:   16,
			BatchSize: 64,
			Seed:      1,
		},
	}
}

// Load initializes the avltool configuration from the given file using
// the given encoding. It reads the signing key pair and resolves the
// configured hasher and all paths relative to the config file.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}

	signKey, err := application.LoadSigningPrivKey(conf.SigningKeyPath, file)
	if err != nil {
		return err
	}
	conf.signingKey = signKey

	verKey, err := application.LoadSigningPubKey(conf.VerifyingKeyPath, file)
	if err != nil {
		return err
	}
	conf.verifyingKey = verKey

	hasher, err := hashers.NewTreeHasher(conf.HasherID)
	if err != nil {
		return err
	}
	conf.hasher = hasher

	if conf.Logger == nil {
		return fmt.Errorf("Config file misses the [logger] section")
	}
	if conf.Workload == nil {
		return fmt.Errorf("Config file misses the [workload] section")
	}
	if conf.Workload.Batches < 1 || conf.Workload.BatchSize < 1 {
		return fmt.Errorf("Workload batches and batch size must be positive")
	}

	conf.HistoryDirectory = utils.ResolvePath(conf.HistoryDirectory, file)
	if conf.Logger.Path != "" {
		conf.Logger.Path = utils.ResolvePath(conf.Logger.Path, file)
	}
	return nil
}

// Save writes the avltool configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the configuration file path.
func (conf *Config) GetPath() string {
	return conf.Path
}

// SigningKey returns the private key loaded by Load.
func (conf *Config) SigningKey() sign.PrivateKey {
	return conf.signingKey
}

// VerifyingKey returns the public key loaded by Load.
func (conf *Config) VerifyingKey() sign.PublicKey {
	return conf.verifyingKey
}

// Hasher returns the tree hasher resolved by Load.
func (conf *Config) Hasher() hashers.TreeHasher {
	return conf.hasher
}

package cmd

import (
	"log"
	"path"

	"github.com/spf13/cobra"

	"github.com/ergoplatform/avltree-go/application"
	"github.com/ergoplatform/avltree-go/avltool"
	"github.com/ergoplatform/avltree-go/avltree"
	"github.com/ergoplatform/avltree-go/cli"
	"github.com/ergoplatform/avltree-go/crypto/hashers"
	"github.com/ergoplatform/avltree-go/crypto/sign"
	"github.com/ergoplatform/avltree-go/digestlog"
	"github.com/ergoplatform/avltree-go/storage/kv/leveldbkv"
	"github.com/ergoplatform/avltree-go/utils"
)

// initCmd represents the init command
var initCmd = cli.NewInitCommand("avltool", initRunFunc)

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".", "Location of directory for storing generated files")
}

func initRunFunc(cmd *cobra.Command, args []string) {
	dir := cmd.Flag("dir").Value.String()
	conf := mkConfig(dir)
	if conf == nil {
		return
	}
	sk := mkSigningKey(dir)
	if sk == nil {
		return
	}
	mkHistory(conf, sk)
}

func mkConfig(dir string) *avltool.Config {
	file := path.Join(dir, "config.toml")
	logger := &application.LoggerConfig{
		EnableStacktrace: true,
		Environment:      "development",
		Path:             "avltool.log",
	}
	conf := avltool.NewConfig(file, "toml", logger)
	if err := conf.Save(); err != nil {
		log.Println(err)
		return nil
	}
	return conf
}

func mkSigningKey(dir string) sign.PrivateKey {
	sk, err := sign.GenerateKey(nil)
	if err != nil {
		log.Print(err)
		return nil
	}
	pk, _ := sk.Public()
	if err := utils.WriteFile(path.Join(dir, "sign.priv"), sk, 0600); err != nil {
		log.Println(err)
		return nil
	}
	if err := utils.WriteFile(path.Join(dir, "sign.pub"), pk, 0600); err != nil {
		log.Println(err)
		return nil
	}
	return sk
}

// mkHistory creates the digest log, seeding it with the empty
// dictionary's digest as version 0.
func mkHistory(conf *avltool.Config, sk sign.PrivateKey) {
	hasher, err := hashers.NewTreeHasher(conf.HasherID)
	if err != nil {
		log.Println(err)
		return
	}
	prover, err := avltree.NewProver(
		avltree.WithHasher(hasher),
		avltree.WithKeyLength(conf.KeyLength),
	)
	if err != nil {
		log.Println(err)
		return
	}
	digest := prover.Digest()

	db, err := leveldbkv.OpenDB(utils.ResolvePath(conf.HistoryDirectory, conf.GetPath()))
	if err != nil {
		log.Println(err)
		return
	}
	defer db.Close()
	hist, err := digestlog.New(db, sk, digestlog.WithDigestLength(len(digest)))
	if err != nil {
		log.Println(err)
		return
	}
	if _, err := hist.Append(digest); err != nil {
		log.Println(err)
	}
}

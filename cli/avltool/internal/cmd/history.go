package cmd

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ergoplatform/avltree-go/avltool"
	"github.com/ergoplatform/avltree-go/digestlog"
	"github.com/ergoplatform/avltree-go/storage/kv"
	"github.com/ergoplatform/avltree-go/storage/kv/leveldbkv"
)

// historyCmd groups the digest history subcommands.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the published digest history.",
	Long:  `Inspect the published digest history.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every entry of the digest history.",
	Run:   historyList,
}

var historyVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the signatures and hash links of the digest history.",
	Run:   historyVerify,
}

func init() {
	RootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyVerifyCmd)
	historyCmd.PersistentFlags().StringP("config", "c", "config.toml", "Path to avltool configuration file")
}

func openHistory(cmd *cobra.Command) (*avltool.Config, kv.DB, *digestlog.Log, error) {
	confPath := cmd.Flag("config").Value.String()
	conf := &avltool.Config{}
	if err := conf.Load(confPath, "toml"); err != nil {
		return nil, nil, nil, err
	}
	db, err := leveldbkv.OpenDB(conf.HistoryDirectory)
	if err != nil {
		return nil, nil, nil, err
	}
	hist, err := digestlog.New(db, conf.SigningKey(),
		digestlog.WithDigestLength(conf.Hasher().Size()+1))
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return conf, db, hist, nil
}

func historyList(cmd *cobra.Command, args []string) {
	_, db, hist, err := openHistory(cmd)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	head, err := hist.Head()
	if err != nil {
		log.Fatal(err)
	}
	for v := uint64(0); v <= head.Version; v++ {
		e, err := hist.Get(v)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%4d  %s\n", e.Version, hex.EncodeToString(e.Digest))
	}
}

func historyVerify(cmd *cobra.Command, args []string) {
	conf, db, hist, err := openHistory(cmd)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	head, err := hist.Head()
	if err != nil {
		log.Fatal(err)
	}
	if err := hist.VerifyChain(conf.VerifyingKey(), 0, head.Version); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("history OK: %d entries\n", head.Version+1)
}

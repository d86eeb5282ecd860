package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/ergoplatform/avltree-go/application"
	"github.com/ergoplatform/avltree-go/avltool"
	"github.com/ergoplatform/avltree-go/cli"
)

// runCmd represents the run command
var runCmd = cli.NewRunCommand("avltool", run)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("config", "c", "config.toml", "Path to avltool configuration file")
}

func run(cmd *cobra.Command, args []string) {
	confPath := cmd.Flag("config").Value.String()

	conf := &avltool.Config{}
	if err := conf.Load(confPath, "toml"); err != nil {
		log.Fatal(err)
	}
	logger := application.NewLogger(conf.Logger)

	workload := avltool.NewWorkload(conf, logger)
	if err := workload.Run(); err != nil {
		logger.Fatal(err.Error())
	}
}

// Executable avltool, a workbench for the authenticated AVL+
// dictionary. See README for usage instructions.
package main

import (
	"github.com/ergoplatform/avltree-go/cli"
	"github.com/ergoplatform/avltree-go/cli/avltool/internal/cmd"
)

func main() {
	cli.ExecuteRoot(cmd.RootCmd)
}

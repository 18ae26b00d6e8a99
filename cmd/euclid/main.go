// Command euclid saturates geometry problems under the rule catalog and
// reports which goals were derived.
package main

import (
	"fmt"
	"os"

	"github.com/JiajunSong-Bigai/inference-engine/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "euclid:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

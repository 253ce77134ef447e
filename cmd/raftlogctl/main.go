// Command raftlogctl is an operational CLI around the minor compaction
// planner: it can dry-run planning against a directory of segment
// images without touching any live storage.
package main

import (
	"fmt"
	"os"

	"github.com/raftlog/compactor/cmd/raftlogctl/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

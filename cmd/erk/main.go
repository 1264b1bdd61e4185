// erk is a developer-workflow CLI managing a pool of reusable git
// worktree slots.
package main

import (
	"os"

	"github.com/dagster-io/erk-sub014/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

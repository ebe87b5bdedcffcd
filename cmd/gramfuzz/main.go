// Command gramfuzz is a minimal demonstration harness over the grammar
// generation engine: it builds a couple of illustrative grammars
// programmatically (it does not parse a textual grammar file — that stays
// out of the engine's scope) and runs Generate against them.
package main

import "github.com/keurnel/gramfuzz/cmd/gramfuzz/cmd"

func main() {
	cmd.Execute()
}

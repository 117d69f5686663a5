// Command harmony is a terminal music player.
package main

import "github.com/FL1CKfps/Harmony-player/internal/cli"

func main() {
	cli.Execute()
}

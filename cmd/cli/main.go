package main

import (
	"github.com/al-chris/1-2-3-game/internal/cli"
)

func main() {
	cli.Execute()
}

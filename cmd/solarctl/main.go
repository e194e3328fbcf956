package main

import (
	"github.com/subosito/gotenv"

	"github.com/Spok95/solar-bom/internal/cli"
)

func main() {
	_ = gotenv.Load()
	cli.Execute()
}

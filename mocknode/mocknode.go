package main

import (
	"flag"

	"github.com/gridtokenx/chainbench"
)

var id = flag.String("id", "1", "node id")

func main() {
	chainbench.Init()
	chainbench.NewNode(chainbench.ID(*id)).Run()
}

package chainbench

import (
	"flag"

	"github.com/gridtokenx/chainbench/log"
)

// Init setup chainbench package
func Init() {
	flag.Parse()
	log.Setup()
	config.Load()
}

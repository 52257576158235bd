package main

import (
	"os"

	"github.com/akmonengine/overlap/cmd"
)

func main() {
	cmd.NewApp().Run(os.Args)
}

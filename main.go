package main

import (
	_ "embed"

	"github.com/notehive/collab-note-service/cmd"
)

//go:embed config/config.yaml
var c string

func main() {
	cmd.Execute(c)
}

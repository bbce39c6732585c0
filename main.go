package main

import (
	"github.com/nicoxiang/kodekloud-downloader/cmd"
)

func main() {
	cmd.Execute()
}

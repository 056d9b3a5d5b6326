package main

import "github.com/cheetahbyte/licensemgr/internal/cli"

func main() {
	cli.Execute()
}

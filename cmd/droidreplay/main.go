package main

import "github.com/devicelab-dev/droidreplay/pkg/cli"

func main() {
	cli.Execute()
}

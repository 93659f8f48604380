package main

import "github.com/theirongolddev/cclock/cmd"

func main() {
	cmd.Execute()
}

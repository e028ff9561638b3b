package main

import "wireshairk/internal/cli"

func main() {
	cli.Execute()
}

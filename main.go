package main

import "github.com/chazu/polycsg/cmd"

func main() {
	cmd.Execute()
}

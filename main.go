package main

import "github.com/fredr0ck/honey-potter/cmd"

func main() {
	cmd.Execute()
}

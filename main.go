package main

import "github.com/sweeparr/sweeparr/cmd"

func main() {
	cmd.Execute()
}

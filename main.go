package main

import "github.com/cliky/cliky/cmd"

func main() {
	cmd.Execute()
}

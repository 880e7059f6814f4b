package main

import "github.com/gaurav-prasanna/texpipe/cmd"

func main() {
	cmd.Execute()
}

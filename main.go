package main

import "github.com/kozaktomas/mask-fitter/cmd"

func main() {
	cmd.Execute()
}

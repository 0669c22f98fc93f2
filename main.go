package main

import "github.com/notargets/dgresidual/cmd"

func main() {
	cmd.Execute()
}

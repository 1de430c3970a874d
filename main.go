package main

import "github.com/notargets/mbgrid/cmd"

func main() {
	cmd.Execute()
}

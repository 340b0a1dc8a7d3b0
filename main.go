package main

import "github.com/pulsecoach/pulsecoach/cmd"

func main() {
	cmd.Execute()
}

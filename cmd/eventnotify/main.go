package main

import "github.com/nfrund/eventnotify/cmd/eventnotify/cmd"

func main() {
	cmd.Execute()
}

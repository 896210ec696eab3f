package main

import "github.com/Tiliavir/trivial-event-tracker/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/KaramelBytes/plotloom-cli/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/diogo/gatewaychat/internal/commands"

func main() {
	commands.Execute()
}

package main

import "github.com/elakbay/elakbay/internal/command"

func main() {
	command.Execute()
}

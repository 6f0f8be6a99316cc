package main

import "auto-validator/cmd"

func main() {
	cmd.Execute()
}

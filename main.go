package main

import "inkpost/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/relwatch/relwatch/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/KaramelBytes/docproof-cli/cmd"

func main() {
	cmd.Execute()
}

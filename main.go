package main

import "github.com/KaramelBytes/skiron-cli/cmd"

func main() {
	cmd.Execute()
}

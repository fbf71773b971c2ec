package main

import "github.com/mtoohey31/uncommitted/cmd"

func main() {
	cmd.Execute()
}

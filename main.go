package main

import "github.com/agentic-research/jsontotables/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/OpenTraceLab/OpenTraceSchem/cmd/ots/cmd"

func main() {
	cmd.Execute()
}

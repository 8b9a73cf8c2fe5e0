package main

import "github.com/soundseeker/seekerctl/cmd"

func main() {
	cmd.Execute()
}

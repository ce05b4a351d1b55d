package main

import "github.gatech.edu/ECEInnovation/Z80-Hexer/cmd"

func main() {
	cmd.Execute()
}

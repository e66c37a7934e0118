package main

import "github.com/jfmyers9/mediakeys/cmd"

func main() {
	cmd.Execute()
}

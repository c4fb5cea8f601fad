package main

import "brain/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/ridoystarlord/packpipe/cmd"

func main() {
	cmd.Execute()
}

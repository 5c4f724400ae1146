package main

import "github.com/Digital-Shane/tv-renamer/internal/cmd"

func main() {
	cmd.Execute()
}

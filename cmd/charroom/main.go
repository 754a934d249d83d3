package main

import "github.com/nfrund/charroom/cmd/charroom/cmd"

func main() {
	cmd.Execute()
}

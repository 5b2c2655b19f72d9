package main

import "github.com/OpenTraceLab/kle-pcbgen/cmd/klepcbgen/cmd"

func main() {
	cmd.Execute()
}

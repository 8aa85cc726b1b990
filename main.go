package main

import "github.com/nisdos/shellsig/cmd"

func main() {
	cmd.Execute()
}

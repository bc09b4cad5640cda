package main

import "github.com/quocvuong92/pve-cli/cmd"

func main() {
	cmd.Execute()
}

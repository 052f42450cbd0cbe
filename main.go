package main

import (
	"github.com/nix-community/nix-installer/cmd/root"
)

func main() {
	root.Execute()
}

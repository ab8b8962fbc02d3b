package main

import (
	"github.com/nagelea/keysentry/cmd"
)

func main() {
	cmd.Execute()
}

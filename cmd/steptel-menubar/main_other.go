//go:build !darwin

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "steptel-menubar runs on macOS only; use steptel instead")
	os.Exit(1)
}

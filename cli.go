//go:build cli
// +build cli

package main

import (
	"sourcing.GO/cmd"
	"sourcing.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}

/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/ssargent/covertree/cmd/covertree/cmd"
)

func main() {
	cmd.Execute()
}

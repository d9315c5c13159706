/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/agrunetcore/farmhub/cmd"

func main() {
	cmd.Execute()
}

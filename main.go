/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Syed-Nihaal/CodeLogs-CW2/cmd"

func main() {
	cmd.Execute()
}

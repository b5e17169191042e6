/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package main

import "github.com/agentultra/deliciousbackup/cmd"

func main() {
	cmd.Execute()
}

// Command pathwei-admin is the Pathwei back-office CLI.
package main

import "github.com/aihavenlabs/pathwei-admin/internal/cli"

func main() {
	cli.Execute()
}

// Command commentary manages threaded page comments stored in SQLite.
package main

import "github.com/mesh-intelligence/commentary/internal/cli"

func main() {
	cli.Execute()
}

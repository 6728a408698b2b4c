package main

import "github.com/lorrc/performance-dashboard/internal/cli"

func main() {
	cli.Execute()
}

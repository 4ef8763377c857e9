package main

import "github.com/set-night/gptdesk/internal/cli"

func main() {
	cli.Execute()
}

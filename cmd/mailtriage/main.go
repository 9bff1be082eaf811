package main

import "github.com/organvm-iii-ergon/universal-mail--automation/internal/cli"

func main() {
	cli.Execute()
}

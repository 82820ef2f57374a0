package main

import "github.com/comitanigiacomo/kanso-habit-engine/internal/cli"

func main() {
	cli.Execute()
}

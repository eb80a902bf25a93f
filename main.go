package main

import "github.com/phux/urlscan/cmd"

func main() {
	cmd.Execute()
}

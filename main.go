package main

import "github.com/theirongolddev/gcusage/cmd"

func main() {
	cmd.Execute()
}

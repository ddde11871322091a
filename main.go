package main

import "github.com/Adolar0042/warden/cmd"

func main() {
	cmd.Execute()
}

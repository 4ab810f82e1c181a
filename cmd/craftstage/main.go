package main

import "github.com/oshokin/craftstage/cmd/craftstage/cmd"

func main() {
	cmd.Execute()
}

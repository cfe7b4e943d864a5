package main

import "github.com/oshokin/release-builder/cmd/release-builder/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/northcutted/scanmodel/cmd"

func main() {
	cmd.Execute()
}

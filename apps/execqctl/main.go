package main

import "github.com/execq/execq/apps/execqctl/cmd"

func main() {
	cmd.Execute()
}

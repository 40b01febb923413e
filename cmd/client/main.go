package main

import "workpro/cmd/client/cmd"

func main() {
	cmd.Execute()
}

package main

import "workpro/cmd/server/cmd"

func main() {
	cmd.Execute()
}

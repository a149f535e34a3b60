package main

import "github.com/screenlens/screenlens/cmd"

func main() {
	cmd.Execute()
}

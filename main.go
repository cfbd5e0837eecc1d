package main

import "github.com/Yishiba/animeko/cmd"

func main() {
	cmd.Execute()
}

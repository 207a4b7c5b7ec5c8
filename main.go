package main

import "github.com/frahmantamala/performance-bonus/cmd"

func main() {
	cmd.Execute()
}

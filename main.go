package main

import "github.com/frahmantamala/drive-sharing/cmd"

func main() {
	cmd.Execute()
}

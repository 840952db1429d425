package main

import "github.com/tonysxn/brobar.delivery/cmd"

func main() {
	cmd.Execute()
}

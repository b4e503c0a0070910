package main

import "github.com/yonixw/pullpush-io-all-user-messages/cmd"

func main() {
	cmd.Execute()
}

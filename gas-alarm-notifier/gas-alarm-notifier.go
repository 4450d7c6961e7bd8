package main

import (
	"github.com/oshokin/gas-alarm-notifier/cmd/gas-alarm-notifier/cmd"
)

func main() {
	cmd.Execute()
}

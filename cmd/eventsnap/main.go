package main

import (
	"eventsnap/cmd/eventsnap/commands"
	"eventsnap/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}

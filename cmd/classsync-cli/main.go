package main

import (
	"classsync-backend/cmd/classsync-cli/commands"
	"context"
)

func main() {
	commands.ExecuteContext(context.Background())
}

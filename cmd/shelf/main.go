// cmd/shelf/main.go
package main

import (
	"github.com/law-makers/shelf/internal/cli"
)

func main() {
	// Interrupts cancel the running command through its context (see cli.Execute)
	cli.Execute()
}

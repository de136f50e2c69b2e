package main

import (
	"os"
	"runtime/debug"

	"github.com/mezonai/jetton/cmd"
	"github.com/mezonai/jetton/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("JETTON CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}

package exception

import (
	"runtime/debug"

	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/monitoring"
)

// SafeGo runs fn in a goroutine; a panic is logged and counted instead of taking the process down.
func SafeGo(name string, fn func()) {
	go func() {
		defer recoverPanic(name)
		fn()
	}()
}

func recoverPanic(name string) {
	if r := recover(); r != nil {
		monitoring.IncreasePanicCount()
		logx.Error("PANIC", "panic in ", name, ": ", r, " ", string(debug.Stack()))
	}
}

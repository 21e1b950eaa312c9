// Package logger provides adapters for popular logger libraries to work with relstore's Logger interface.
//
// The adapters allow you to use your existing logger with relstore without writing boilerplate.
// Note that the standard library's slog.Logger already implements relstore.Logger directly.
//
// Example with zap:
//
//	import (
//	    "relstore"
//	    "relstore/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    db, err := relstore.Open("data.db", relstore.WithLogger(logger.NewZap(zapLogger)))
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer db.Close()
//	}
//
package logger

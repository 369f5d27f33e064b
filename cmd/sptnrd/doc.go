// Package main hosts sptnrd, the long-running trigger service.
//
// sptnrd answers /process by launching the sptnr binary detached and serves
// the run logs that job leaves behind. It runs until SIGINT or SIGTERM.
package main

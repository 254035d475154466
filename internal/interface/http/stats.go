package handlers

import "expvar"

// stats is published under "registry" at /api/debug/vars.
var stats = expvar.NewMap("registry")

const (
	statRegistered     = "registered"
	statRegisterFailed = "register_failed"
	statLoginSucceeded = "login_succeeded"
	statLoginFailed    = "login_failed"
)

func countRegister(err error) {
	if err != nil {
		stats.Add(statRegisterFailed, 1)
		return
	}
	stats.Add(statRegistered, 1)
}

func countLogin(ok bool) {
	if ok {
		stats.Add(statLoginSucceeded, 1)
		return
	}
	stats.Add(statLoginFailed, 1)
}

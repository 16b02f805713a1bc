package main

import (
	"net/http"
	"time"
)

const (
	readTimeout = 15 * time.Second
	idleTimeout = 60 * time.Second
	replySlack  = 15 * time.Second
)

// newServer builds the HTTP server. askBudget is the longest an ask may wait
// on the gateway; zero leaves writes without a deadline.
func newServer(addr string, handler http.Handler, askBudget time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout(askBudget),
		IdleTimeout:  idleTimeout,
	}
}

// writeTimeout leaves room to write the reply after the slowest gateway call.
func writeTimeout(askBudget time.Duration) time.Duration {
	if askBudget <= 0 {
		return 0
	}
	return askBudget + replySlack
}

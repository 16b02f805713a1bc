package services

import (
	"fmt"
	"log"
	"time"
)

const (
	sessionPollInterval = 5 * time.Minute
	// Share of MaxSessions above which the monitor starts warning.
	sessionWarnRatio = 0.9
)

type sessionCounter interface {
	Len() int
}

type connectionCounter interface {
	Count() int
}

// SessionMonitor periodically reports how many conversations the store holds
// and warns when it is close to its capacity.
type SessionMonitor struct {
	store       sessionCounter
	conns       connectionCounter
	maxSessions int
	interval    time.Duration
	logf        func(format string, args ...interface{})
	stopChan    chan struct{}
}

// NewSessionMonitor reports on store. conns, when not nil, adds the number of
// open WebSocket connections to each report.
func NewSessionMonitor(store sessionCounter, conns connectionCounter, maxSessions int) *SessionMonitor {
	return &SessionMonitor{
		store:       store,
		conns:       conns,
		maxSessions: maxSessions,
		interval:    sessionPollInterval,
		logf:        log.Printf,
		stopChan:    make(chan struct{}),
	}
}

func (m *SessionMonitor) Start() {
	if m.store == nil {
		return
	}

	go m.loop()
	log.Printf("Session monitor started")
}

func (m *SessionMonitor) Stop() {
	select {
	case <-m.stopChan:
		return
	default:
		close(m.stopChan)
	}
}

func (m *SessionMonitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.report()
		}
	}
}

func (m *SessionMonitor) report() {
	n := m.store.Len()
	ws := ""
	if m.conns != nil {
		ws = fmt.Sprintf(", %d websocket connections", m.conns.Count())
	}

	if nearCapacity(n, m.maxSessions) {
		m.logf("sessions: %d of %d in use%s, least recently used conversations are being dropped", n, m.maxSessions, ws)
		return
	}
	m.logf("sessions: %d active%s", n, ws)
}

func nearCapacity(n, maxSessions int) bool {
	if maxSessions <= 0 {
		return false
	}
	return float64(n) >= sessionWarnRatio*float64(maxSessions)
}

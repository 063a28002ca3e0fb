package mailer

import (
	"slices"
	"sync"
)

// SentTicket is one ticket accepted by MockMailer.
type SentTicket struct {
	Recipient string
	Ticket    Ticket
}

// MockMailer records tickets instead of delivering them. It can be told to fail, to
// exercise the retry and dead-letter paths of the consumers.
type MockMailer struct {
	mu      sync.RWMutex
	tickets []SentTicket
	err     error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) SendTicket(recipient string, ticket Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	ticket.Seats = slices.Clone(ticket.Seats)
	m.tickets = append(m.tickets, SentTicket{Recipient: recipient, Ticket: ticket})

	return nil
}

// FailWith makes every later SendTicket return err. A nil err restores delivery.
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

func (m *MockMailer) Tickets() []SentTicket {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.tickets)
}

func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tickets = nil
	m.err = nil
}

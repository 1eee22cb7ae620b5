// Package directory is the in-memory phone registry: number -> subscriber
// record. Registration is permissive: re-registering a known number is a
// no-op. Subscribers are never removed.
package directory

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"prepaid-accounting/internal/ledger"
	"prepaid-accounting/internal/phone"
)

// Subscriber is a registered phone number and its endpoint.
type Subscriber struct {
	Number string
	Phone  phone.Phone
}

type Directory struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	ledger      *ledger.Ledger
	log         *logrus.Entry
}

func New(led *ledger.Ledger) *Directory {
	return &Directory{
		subscribers: make(map[string]*Subscriber),
		ledger:      led,
		log:         logrus.WithField("component", "directory"),
	}
}

// Register inserts the number if absent and opens its ledger entry at zero.
// Returns true when this call created the registration.
func (d *Directory) Register(number string, ph phone.Phone) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.subscribers[number]; ok {
		return false
	}
	d.subscribers[number] = &Subscriber{Number: number, Phone: ph}
	d.ledger.Open(number)
	d.log.Infof("registered %s", number)
	return true
}

func (d *Directory) Lookup(number string) (*Subscriber, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sub, ok := d.subscribers[number]
	return sub, ok
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

// Numbers returns all registered numbers, sorted for stable API output.
func (d *Directory) Numbers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	numbers := make([]string, 0, len(d.subscribers))
	for n := range d.subscribers {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	return numbers
}

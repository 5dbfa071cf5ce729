// Package static is an in-memory system of record seeded with the demo
// clinic. State is mutable and lives for the process lifetime.
package static

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

// ResetToken is the token every demo password recovery receives.
const ResetToken = "static-reset-token-demo"

const hashCost = bcrypt.MinCost

type account struct {
	user         records.User
	passwordHash []byte
	answerHash   []byte
}

// Store implements records.Backend over in-memory maps.
type Store struct {
	mu     sync.RWMutex
	clock  *clinictime.Clock
	logger *logging.Logger

	patients     map[string]*records.Patient
	patientOrder []string
	services     map[string]*records.DentalService
	serviceOrder []string
	appointments map[string]*records.Appointment
	payments     []records.Payment
	accounts     map[string]*account
	tokens       map[string]string
	settings     records.ClinicSettings
	activity     records.ActivityStats
	receiptSeq   int
}

var _ records.Backend = (*Store)(nil)

// New returns a store seeded with the demo clinic.
func New(clock *clinictime.Clock, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		c, err := clinictime.New("")
		if err != nil {
			return nil, err
		}
		clock = c
	}
	s := &Store{
		clock:        clock,
		logger:       logger.Component("static_store"),
		patients:     make(map[string]*records.Patient),
		services:     make(map[string]*records.DentalService),
		appointments: make(map[string]*records.Appointment),
		accounts:     make(map[string]*account),
		tokens:       make(map[string]string),
	}
	if err := s.seed(); err != nil {
		return nil, fmt.Errorf("static: seed: %w", err)
	}
	return s, nil
}

func (s *Store) timestamp() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}

// account resolves the token to its account. Callers hold s.mu.
func (s *Store) account(creds records.Credentials) (*account, error) {
	if !creds.Valid() {
		return nil, records.ErrUnauthorized
	}
	id, ok := s.tokens[creds.Token]
	if !ok {
		return nil, records.ErrUnauthorized
	}
	acct, ok := s.accounts[id]
	if !ok {
		return nil, records.ErrUnauthorized
	}
	return acct, nil
}

func (s *Store) authorize(creds records.Credentials) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.account(creds)
	return err
}

func (s *Store) accountByUsername(username string) *account {
	for _, acct := range s.accounts {
		if strings.EqualFold(acct.user.Username, username) {
			return acct
		}
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func hash(secret string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(secret), hashCost)
}

func matches(hashed []byte, secret string) bool {
	return len(hashed) > 0 && bcrypt.CompareHashAndPassword(hashed, []byte(secret)) == nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("static: %s %s: %w", kind, id, records.ErrNotFound)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

package store

import (
	"context"
	"sync"

	"github.com/chainrelay/correlator/internal/types"
)

// InMemoryStore is a Store implementation backed by plain maps guarded
// by a mutex. It exists so the engine package is testable without a
// live Postgres instance, and to prove the Store boundary is a real
// interface rather than a Postgres-shaped leak: PostgresStore and
// InMemoryStore are interchangeable.
type InMemoryStore struct {
	mu sync.RWMutex

	envelopes map[string]*types.CrosschainMessage
	payloads  map[string]*types.AppPayload
	preRecs   map[string]*types.BusRodeOftSentLfg
	driven    map[string]*types.BusDrivenOftReceivedLfg
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		envelopes: make(map[string]*types.CrosschainMessage),
		payloads:  make(map[string]*types.AppPayload),
		preRecs:   make(map[string]*types.BusRodeOftSentLfg),
		driven:    make(map[string]*types.BusDrivenOftReceivedLfg),
	}
}

func (s *InMemoryStore) GetEnvelope(_ context.Context, id string) (*types.CrosschainMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.envelopes[id]
	if !ok {
		return nil, false, nil
	}
	cp := *m
	return &cp, true, nil
}

func (s *InMemoryStore) SetEnvelope(_ context.Context, m *types.CrosschainMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.envelopes[m.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetPayload(_ context.Context, id string) (*types.AppPayload, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payloads[id]
	if !ok {
		return nil, false, nil
	}
	cp := *p
	return &cp, true, nil
}

func (s *InMemoryStore) SetPayload(_ context.Context, p *types.AppPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.payloads[p.ID] = &cp
	return nil
}

func (s *InMemoryStore) PayloadsByTransportingMessageID(_ context.Context, transportingMessageID string) ([]*types.AppPayload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.AppPayload
	for _, p := range s.payloads {
		if p.TransportingMessageID == transportingMessageID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetBusPreRecord(_ context.Context, key string) (*types.BusRodeOftSentLfg, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.preRecs[key]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

func (s *InMemoryStore) SetBusPreRecord(_ context.Context, r *types.BusRodeOftSentLfg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.preRecs[r.Key] = &cp
	return nil
}

func (s *InMemoryStore) GetBusDriven(_ context.Context, envelopeID string) (*types.BusDrivenOftReceivedLfg, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.driven[envelopeID]
	if !ok {
		return nil, false, nil
	}
	cp := *d
	return &cp, true, nil
}

func (s *InMemoryStore) SetBusDriven(_ context.Context, d *types.BusDrivenOftReceivedLfg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.driven[d.EnvelopeID] = &cp
	return nil
}

func (s *InMemoryStore) GetBusDrivenByPassengerKey(_ context.Context, key string) (*types.BusDrivenOftReceivedLfg, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.driven {
		for _, k := range d.PassengerKeys {
			if k == key {
				cp := *d
				return &cp, true, nil
			}
		}
	}
	return nil, false, nil
}

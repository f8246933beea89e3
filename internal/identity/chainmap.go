package identity

import (
	"fmt"

	"github.com/chainrelay/correlator/internal/xerrors"
)

// ChainEntry is one row of the static chain↔EID↔slug↔explorer table
// loaded at startup (spec §6 "static configuration").
type ChainEntry struct {
	ChainID     uint64
	Eid         uint32
	Slug        string
	ExplorerURL string
	Domain      uint32 // CCTP domain id, where applicable
	HasDomain   bool
}

// ChainTable is the immutable lookup surface the engine consults when a
// raw event supplies one identifier but the key requires another. A
// miss is a ConfigError that aborts the event's handling.
type ChainTable struct {
	byChainID map[uint64]ChainEntry
	byEid     map[uint32]ChainEntry
	byDomain  map[uint32]ChainEntry
}

// NewChainTable builds an immutable table from the configured entries.
func NewChainTable(entries []ChainEntry) *ChainTable {
	t := &ChainTable{
		byChainID: make(map[uint64]ChainEntry, len(entries)),
		byEid:     make(map[uint32]ChainEntry, len(entries)),
		byDomain:  make(map[uint32]ChainEntry, len(entries)),
	}
	for _, e := range entries {
		t.byChainID[e.ChainID] = e
		t.byEid[e.Eid] = e
		if e.HasDomain {
			t.byDomain[e.Domain] = e
		}
	}
	return t
}

func (t *ChainTable) EidForChainID(chainID uint64) (uint32, error) {
	e, ok := t.byChainID[chainID]
	if !ok {
		return 0, xerrors.Config(fmt.Sprintf("no EID mapping for chain id %d", chainID))
	}
	return e.Eid, nil
}

func (t *ChainTable) ChainIDForEid(eid uint32) (uint64, error) {
	e, ok := t.byEid[eid]
	if !ok {
		return 0, xerrors.Config(fmt.Sprintf("no chain id mapping for EID %d", eid))
	}
	return e.ChainID, nil
}

func (t *ChainTable) SlugForChainID(chainID uint64) (string, error) {
	e, ok := t.byChainID[chainID]
	if !ok {
		return "", xerrors.Config(fmt.Sprintf("no slug mapping for chain id %d", chainID))
	}
	return e.Slug, nil
}

func (t *ChainTable) ExplorerURLForChainID(chainID uint64) (string, error) {
	e, ok := t.byChainID[chainID]
	if !ok {
		return "", xerrors.Config(fmt.Sprintf("no explorer mapping for chain id %d", chainID))
	}
	return e.ExplorerURL, nil
}

func (t *ChainTable) ChainIDForDomain(domain uint32) (uint64, error) {
	e, ok := t.byDomain[domain]
	if !ok {
		return 0, xerrors.Config(fmt.Sprintf("no chain id mapping for CCTP domain %d", domain))
	}
	return e.ChainID, nil
}

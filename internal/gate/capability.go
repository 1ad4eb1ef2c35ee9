package gate

import (
	"encoding/json"
	"fmt"
)

// #region snapshot

// CapabilitySnapshot is the set of capabilities available this tick. It is a closed sum type:
// the only implementations are CapabilityIDList, CapabilityIDSet, CapabilityRecordMap and
// CapabilityObjectList. Lookups go through HasCapability.
type CapabilitySnapshot interface {
	capabilitySnapshot()
}

// CapabilityIDList is an explicit list of capability ids.
type CapabilityIDList []string

// CapabilityIDSet is a precomputed set of capability ids.
type CapabilityIDSet map[string]struct{}

// CapabilityRecordMap indexes capability records by id; only key presence matters.
type CapabilityRecordMap map[string]json.RawMessage

// Capability is one entry of a CapabilityObjectList.
type Capability struct {
	ID string `json:"id"`
}

// CapabilityObjectList is a list of capability records.
type CapabilityObjectList []Capability

func (CapabilityIDList) capabilitySnapshot()     {}
func (CapabilityIDSet) capabilitySnapshot()      {}
func (CapabilityRecordMap) capabilitySnapshot()  {}
func (CapabilityObjectList) capabilitySnapshot() {}

// NewCapabilityIDSet builds a set variant from ids.
func NewCapabilityIDSet(ids ...string) CapabilityIDSet {
	set := make(CapabilityIDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// #endregion snapshot

// #region lookup

// HasCapability reports whether id is present in the snapshot. Empty ids, nil snapshots and
// foreign implementations are never present.
func HasCapability(s CapabilitySnapshot, id string) bool {
	if id == "" {
		return false
	}
	switch v := s.(type) {
	case nil:
		return false
	case CapabilityIDList:
		return contains(v, id)
	case CapabilityIDSet:
		_, ok := v[id]
		return ok
	case CapabilityRecordMap:
		_, ok := v[id]
		return ok
	case CapabilityObjectList:
		for _, c := range v {
			if c.ID == id {
				return true
			}
		}
		return false
	}
	return false
}

// #endregion lookup

// #region decode

// capabilityEnvelope mirrors the JSON shapes accepted at the boundary.
type capabilityEnvelope struct {
	CapabilityIDs []string            `json:"capabilityIds"`
	IDs           []string            `json:"ids"`
	Capabilities  []Capability        `json:"capabilities"`
	ByID          CapabilityRecordMap `json:"byId"`
	Set           []string            `json:"set"`
}

// DecodeCapabilitySnapshot converts a JSON document into a snapshot variant. Shapes are tried
// in a fixed order: capabilityIds, ids, capabilities, byId, set. An empty or unrecognized
// document yields an empty id list, so every capability lookup fails.
func DecodeCapabilitySnapshot(data []byte) (CapabilitySnapshot, error) {
	if len(data) == 0 || string(data) == "null" {
		return CapabilityIDList{}, nil
	}
	var env capabilityEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode capability snapshot: %w", err)
	}
	switch {
	case env.CapabilityIDs != nil:
		return CapabilityIDList(env.CapabilityIDs), nil
	case env.IDs != nil:
		return CapabilityIDList(env.IDs), nil
	case env.Capabilities != nil:
		return CapabilityObjectList(env.Capabilities), nil
	case env.ByID != nil:
		return env.ByID, nil
	case env.Set != nil:
		return NewCapabilityIDSet(env.Set...), nil
	}
	return CapabilityIDList{}, nil
}

// #endregion decode

// SPDX-License-Identifier: MPL-2.0

package meta

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
)

type (
	// Manipulations is a set of manipulations keyed by the record they patch.
	// Adding a manipulation for an identity already present replaces it.
	Manipulations map[Identity]Manipulation

	// document is the persisted form of a single manipulation.
	document struct {
		Type         Kind            `json:"Type"`
		Manipulation json.RawMessage `json:"Manipulation"`
	}
)

// NewManipulations builds a set from the given manipulations; later entries win.
func NewManipulations(ms ...Manipulation) Manipulations {
	set := make(Manipulations, len(ms))
	for _, m := range ms {
		set.Add(m)
	}
	return set
}

// Add inserts m, replacing any manipulation patching the same record.
func (s Manipulations) Add(m Manipulation) {
	s[m.Identity()] = m
}

// UnionWith adds every manipulation of other, overwriting shared identities.
func (s Manipulations) UnionWith(other Manipulations) {
	for id, m := range other {
		s[id] = m
	}
}

// Contains reports whether a manipulation with the given identity is present.
func (s Manipulations) Contains(id Identity) bool {
	_, ok := s[id]
	return ok
}

// Clone returns a shallow copy of the set.
func (s Manipulations) Clone() Manipulations {
	out := make(Manipulations, len(s))
	out.UnionWith(s)
	return out
}

// Sorted returns the manipulations ordered by kind, then key.
func (s Manipulations) Sorted() []Manipulation {
	out := make([]Manipulation, 0, len(s))
	for _, m := range s {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Manipulation) int {
		ia, ib := a.Identity(), b.Identity()
		return cmp.Or(cmp.Compare(ia.Kind, ib.Kind), cmp.Compare(ia.Key, ib.Key))
	})
	return out
}

// MarshalJSON writes the set as a sorted list of {Type, Manipulation} objects.
func (s Manipulations) MarshalJSON() ([]byte, error) {
	docs := make([]document, 0, len(s))
	for _, m := range s.Sorted() {
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", m.Identity(), err)
		}
		docs = append(docs, document{Type: m.Kind(), Manipulation: raw})
	}
	return json.Marshal(docs)
}

// UnmarshalJSON reads a list of {Type, Manipulation} objects. Duplicate
// identities collapse to the last entry.
func (s *Manipulations) UnmarshalJSON(data []byte) error {
	var docs []document
	if err := json.Unmarshal(data, &docs); err != nil {
		return err
	}
	set := make(Manipulations, len(docs))
	for i, doc := range docs {
		m, err := decode(doc)
		if err != nil {
			return fmt.Errorf("manipulation %d: %w", i, err)
		}
		set.Add(m)
	}
	*s = set
	return nil
}

func decode(doc document) (Manipulation, error) {
	var (
		m   Manipulation
		err error
	)
	switch doc.Type {
	case KindImc:
		m, err = unmarshalAs[ImcManipulation](doc.Manipulation)
	case KindEqp:
		m, err = unmarshalAs[EqpManipulation](doc.Manipulation)
	case KindEqdp:
		m, err = unmarshalAs[EqdpManipulation](doc.Manipulation)
	case KindEst:
		m, err = unmarshalAs[EstManipulation](doc.Manipulation)
	case KindGmp:
		m, err = unmarshalAs[GmpManipulation](doc.Manipulation)
	case KindRsp:
		m, err = unmarshalAs[RspManipulation](doc.Manipulation)
	case KindGlobalEqp:
		m, err = unmarshalAs[GlobalEqpManipulation](doc.Manipulation)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, doc.Type)
	}
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func unmarshalAs[T Manipulation](raw json.RawMessage) (Manipulation, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

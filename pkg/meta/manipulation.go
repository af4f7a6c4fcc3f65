// SPDX-License-Identifier: MPL-2.0

// Package meta models metadata-patch entries ("manipulations") a mod contributes
// besides file redirections. Each manipulation targets one game record; two
// manipulations with the same Identity patch the same record and are treated
// as the same set element.
package meta

import (
	"errors"
	"fmt"
)

const (
	// KindImc patches an image-change record (material/decal/vfx/attributes).
	KindImc Kind = "Imc"
	// KindEqp patches an equipment parameter record.
	KindEqp Kind = "Eqp"
	// KindEqdp patches an equipment deformer record for one race/gender.
	KindEqdp Kind = "Eqdp"
	// KindEst patches an extra skeleton table record.
	KindEst Kind = "Est"
	// KindGmp patches a gimmick parameter record.
	KindGmp Kind = "Gmp"
	// KindRsp patches a racial scaling parameter.
	KindRsp Kind = "Rsp"
	// KindGlobalEqp applies a global equipment parameter override.
	KindGlobalEqp Kind = "GlobalEqp"
)

// ErrUnknownKind is returned when decoding a manipulation of an unknown kind.
var ErrUnknownKind = errors.New("unknown manipulation kind")

type (
	// Kind discriminates the closed set of manipulation types.
	Kind string

	// Identity identifies the record a manipulation patches.
	Identity struct {
		Kind Kind
		Key  string
	}

	// Manipulation is a single metadata patch. The set of implementations is
	// closed to this package.
	Manipulation interface {
		Kind() Kind
		Identity() Identity
		Validate() error
		sealed()
	}

	// EqpManipulation overrides the equipment parameter entry of one item slot.
	EqpManipulation struct {
		SetID uint16 `json:"SetId"`
		Slot  string `json:"Slot"`
		Entry uint64 `json:"Entry"`
	}

	// EqdpManipulation overrides the deformer entry of one slot for a gendered race.
	EqdpManipulation struct {
		SetID  uint16 `json:"SetId"`
		Slot   string `json:"Slot"`
		Gender string `json:"Gender"`
		Race   string `json:"Race"`
		Entry  uint16 `json:"Entry"`
	}

	// EstManipulation overrides an extra skeleton id.
	EstManipulation struct {
		SetID  uint16 `json:"SetId"`
		Slot   string `json:"Slot"`
		Gender string `json:"Gender"`
		Race   string `json:"Race"`
		Entry  uint16 `json:"Entry"`
	}

	// GmpManipulation overrides a visor/gimmick entry.
	GmpManipulation struct {
		SetID uint16 `json:"SetId"`
		Entry uint64 `json:"Entry"`
	}

	// RspManipulation overrides one racial scaling attribute.
	RspManipulation struct {
		SubRace   string  `json:"SubRace"`
		Attribute string  `json:"Attribute"`
		Entry     float32 `json:"Entry"`
	}

	// GlobalEqpManipulation forces an equipment flag for every item of a kind.
	GlobalEqpManipulation struct {
		Type      string `json:"Type"`
		Condition uint16 `json:"Condition"`
	}
)

// Known reports whether k is one of the manipulation kinds.
func (k Kind) Known() bool {
	switch k {
	case KindImc, KindEqp, KindEqdp, KindEst, KindGmp, KindRsp, KindGlobalEqp:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// String renders the identity as "Kind(key)".
func (i Identity) String() string { return fmt.Sprintf("%s(%s)", i.Kind, i.Key) }

func (EqpManipulation) Kind() Kind { return KindEqp }
func (EqdpManipulation) Kind() Kind { return KindEqdp }
func (EstManipulation) Kind() Kind { return KindEst }
func (GmpManipulation) Kind() Kind { return KindGmp }
func (RspManipulation) Kind() Kind { return KindRsp }
func (GlobalEqpManipulation) Kind() Kind { return KindGlobalEqp }

func (m EqpManipulation) Identity() Identity {
	return Identity{KindEqp, fmt.Sprintf("%d/%s", m.SetID, m.Slot)}
}

func (m EqdpManipulation) Identity() Identity {
	return Identity{KindEqdp, fmt.Sprintf("%d/%s/%s/%s", m.SetID, m.Slot, m.Gender, m.Race)}
}

func (m EstManipulation) Identity() Identity {
	return Identity{KindEst, fmt.Sprintf("%d/%s/%s/%s", m.SetID, m.Slot, m.Gender, m.Race)}
}

func (m GmpManipulation) Identity() Identity {
	return Identity{KindGmp, fmt.Sprintf("%d", m.SetID)}
}

func (m RspManipulation) Identity() Identity {
	return Identity{KindRsp, m.SubRace + "/" + m.Attribute}
}

func (m GlobalEqpManipulation) Identity() Identity {
	return Identity{KindGlobalEqp, fmt.Sprintf("%s/%d", m.Type, m.Condition)}
}

func (m EqpManipulation) Validate() error { return requireFields(KindEqp, m.Slot) }
func (m EqdpManipulation) Validate() error { return requireFields(KindEqdp, m.Slot, m.Gender, m.Race) }
func (m EstManipulation) Validate() error { return requireFields(KindEst, m.Slot, m.Gender, m.Race) }
func (GmpManipulation) Validate() error { return nil }
func (m RspManipulation) Validate() error { return requireFields(KindRsp, m.SubRace, m.Attribute) }
func (m GlobalEqpManipulation) Validate() error {
	return requireFields(KindGlobalEqp, m.Type)
}

func (EqpManipulation) sealed() {}
func (EqdpManipulation) sealed() {}
func (EstManipulation) sealed() {}
func (GmpManipulation) sealed() {}
func (RspManipulation) sealed() {}
func (GlobalEqpManipulation) sealed() {}

func requireFields(kind Kind, fields ...string) error {
	for _, f := range fields {
		if f == "" {
			return fmt.Errorf("%s manipulation: missing identifying field", kind)
		}
	}
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package meta

import (
	"errors"
	"fmt"
)

const (
	// ImcAttributeCount is the number of attribute bits an image-change entry carries.
	ImcAttributeCount = 10
	// ImcAttributeMask covers every attribute bit of an image-change entry.
	ImcAttributeMask uint16 = 1<<ImcAttributeCount - 1

	// ObjectEquipment identifies gear worn in an equipment slot.
	ObjectEquipment ObjectType = "Equipment"
	// ObjectAccessory identifies gear worn in an accessory slot.
	ObjectAccessory ObjectType = "Accessory"
	// ObjectWeapon identifies main- and off-hand weapons.
	ObjectWeapon ObjectType = "Weapon"
	// ObjectMonster identifies monster models.
	ObjectMonster ObjectType = "Monster"
	// ObjectDemiHuman identifies demi-human models.
	ObjectDemiHuman ObjectType = "DemiHuman"
)

// ErrInvalidImcIdentifier is returned when an ImcIdentifier does not name a record.
var ErrInvalidImcIdentifier = errors.New("invalid imc identifier")

type (
	// ObjectType is the model family an image-change record belongs to.
	ObjectType string

	// ImcIdentifier names exactly one image-change record.
	ImcIdentifier struct {
		ObjectType  ObjectType `json:"ObjectType"`
		PrimaryID   uint16     `json:"PrimaryId"`
		SecondaryID uint16     `json:"SecondaryId"`
		Variant     uint8      `json:"Variant"`
		EquipSlot   string     `json:"EquipSlot"`
		BodySlot    string     `json:"BodySlot"`
	}

	// ImcEntry is the payload of an image-change record.
	ImcEntry struct {
		MaterialID          uint8  `json:"MaterialId"`
		DecalID             uint8  `json:"DecalId"`
		VfxID               uint8  `json:"VfxId"`
		MaterialAnimationID uint8  `json:"MaterialAnimationId"`
		AttributeMask       uint16 `json:"AttributeMask"`
		SoundID             uint8  `json:"SoundId"`
	}

	// ImcManipulation replaces one image-change record.
	ImcManipulation struct {
		ImcIdentifier
		Entry ImcEntry `json:"Entry"`
	}
)

// Validate checks that the identifier names a record of a known object type.
func (id ImcIdentifier) Validate() error {
	switch id.ObjectType {
	case ObjectEquipment, ObjectAccessory:
		if id.EquipSlot == "" {
			return fmt.Errorf("%w: %s record requires an equip slot", ErrInvalidImcIdentifier, id.ObjectType)
		}
	case ObjectWeapon, ObjectMonster, ObjectDemiHuman:
	default:
		return fmt.Errorf("%w: unknown object type %q", ErrInvalidImcIdentifier, id.ObjectType)
	}
	return nil
}

// String renders the identifier in a compact human-readable form.
func (id ImcIdentifier) String() string {
	return fmt.Sprintf("%s %04d-%04d v%d %s%s", id.ObjectType, id.PrimaryID, id.SecondaryID, id.Variant, id.EquipSlot, id.BodySlot)
}

// WithAttributes returns a copy of the entry with its attribute bits replaced.
func (e ImcEntry) WithAttributes(mask uint16) ImcEntry {
	e.AttributeMask = mask & ImcAttributeMask
	return e
}

func (ImcManipulation) Kind() Kind { return KindImc }

func (m ImcManipulation) Identity() Identity {
	return Identity{KindImc, m.ImcIdentifier.String()}
}

func (m ImcManipulation) Validate() error {
	if err := m.ImcIdentifier.Validate(); err != nil {
		return err
	}
	if m.Entry.AttributeMask&^ImcAttributeMask != 0 {
		return fmt.Errorf("imc manipulation %s: attribute mask %#x exceeds %d bits", m.ImcIdentifier, m.Entry.AttributeMask, ImcAttributeCount)
	}
	return nil
}

func (ImcManipulation) sealed() {}

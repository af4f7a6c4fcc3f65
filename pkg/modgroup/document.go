// SPDX-License-Identifier: MPL-2.0

package modgroup

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modweave/modweave/pkg/cueutil"
	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/types"
)

// DocumentVersion is written into every group and default document.
const DocumentVersion = 0

//go:embed group_schema.cue
var schemaBytes []byte

var (
	groupSchema   = cueutil.NewSchema(schemaBytes, "#Group")
	defaultSchema = cueutil.NewSchema(schemaBytes, "#Default")

	// ErrMalformedDocument is returned when a document cannot be turned into a group.
	ErrMalformedDocument = errors.New("malformed group document")
)

type (
	// Document is the persisted form of a group. Kind-specific fields are
	// omitted for kinds that do not use them.
	Document struct {
		Version         int                 `json:"Version"`
		Name            string              `json:"Name"`
		Description     string              `json:"Description"`
		Image           string              `json:"Image"`
		Page            int                 `json:"Page"`
		Priority        types.ModPriority   `json:"Priority"`
		Type            GroupType           `json:"Type"`
		DefaultSettings types.Setting       `json:"DefaultSettings"`
		Identifier      *meta.ImcIdentifier `json:"Identifier,omitempty"`
		DefaultEntry    *meta.ImcEntry      `json:"DefaultEntry,omitempty"`
		CanBeDisabled   bool                `json:"CanBeDisabled,omitempty"`
		DefaultDisabled bool                `json:"DefaultDisabled,omitempty"`
		Options         []OptionDocument    `json:"Options"`
		Containers      []ContainerDocument `json:"Containers,omitempty"`
	}

	// OptionDocument is the persisted form of an option. Single and multi
	// options carry their payload inline.
	OptionDocument struct {
		Name           string                            `json:"Name"`
		Description    string                            `json:"Description"`
		Priority       *types.ModPriority                `json:"Priority,omitempty"`
		AttributeIndex *int                              `json:"AttributeIndex,omitempty"`
		ConditionMask  *types.Setting                    `json:"ConditionMask,omitempty"`
		ConditionValue *types.Setting                    `json:"ConditionValue,omitempty"`
		Indentation    int                               `json:"Indentation,omitempty"`
		SubGroup       string                            `json:"SubGroup,omitempty"`
		Files          map[types.GamePath]types.FullPath `json:"Files,omitempty"`
		FileSwaps      map[types.GamePath]types.GamePath `json:"FileSwaps,omitempty"`
		Manipulations  meta.Manipulations                `json:"Manipulations,omitempty"`
	}

	// ContainerDocument is the persisted form of a standalone container, and
	// of a mod's default payload.
	ContainerDocument struct {
		Version          int                               `json:"Version,omitempty"`
		Name             string                            `json:"Name,omitempty"`
		AssociationMask  *types.Setting                    `json:"AssociationMask,omitempty"`
		AssociationValue *types.Setting                    `json:"AssociationValue,omitempty"`
		Files            map[types.GamePath]types.FullPath `json:"Files"`
		FileSwaps        map[types.GamePath]types.GamePath `json:"FileSwaps"`
		Manipulations    meta.Manipulations                `json:"Manipulations"`
	}

	// MalformedDocumentError reports a document that passed the schema but
	// does not describe a valid group.
	MalformedDocumentError struct {
		Name   string
		Reason string
		Err    error
	}
)

// Error implements the error interface.
func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("group %q: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("group %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrMalformedDocument and the underlying cause.
func (e *MalformedDocumentError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedDocument}
	}
	return []error{ErrMalformedDocument, e.Err}
}

// Encode renders g as an indented JSON document.
func Encode(g Group) ([]byte, error) {
	return json.MarshalIndent(ToDocument(g), "", "  ")
}

// Decode validates data against the group schema and builds the group it
// describes. filename is used in error messages only.
func Decode(data []byte, filename string) (Group, error) {
	result, err := cueutil.Decode[Document](groupSchema, data, cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return FromDocument(result.Value)
}

// EncodeDefault renders a mod's default container.
func EncodeDefault(c *DataContainer) ([]byte, error) {
	doc := containerDocument(c)
	doc.Name = ""
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeDefault validates and decodes a mod's default container.
func DecodeDefault(data []byte, filename string) (*DataContainer, error) {
	result, err := cueutil.Decode[ContainerDocument](defaultSchema, data, cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	c := NewDataContainer(nil)
	result.Value.fill(c)
	return c, nil
}

// ToDocument converts g into its persisted form.
func ToDocument(g Group) *Document {
	base := g.Base()
	doc := &Document{
		Version:         DocumentVersion,
		Name:            base.Name,
		Description:     base.Description.String(),
		Image:           base.Image,
		Page:            base.Page,
		Priority:        base.Priority,
		Type:            g.Type(),
		DefaultSettings: base.DefaultSettings,
		Options:         []OptionDocument{},
	}

	switch g := g.(type) {
	case *SingleGroup:
		for _, o := range g.OptionData {
			doc.Options = append(doc.Options, payloadOption(o.OptionBase, &o.Data))
		}
	case *MultiGroup:
		for _, o := range g.OptionData {
			od := payloadOption(o.OptionBase, &o.Data)
			od.Priority = &o.Priority
			doc.Options = append(doc.Options, od)
		}
	case *ImcGroup:
		doc.Identifier = &g.Identifier
		doc.DefaultEntry = &g.DefaultEntry
		doc.CanBeDisabled = g.CanBeDisabled
		doc.DefaultDisabled = g.DefaultDisabled
		for _, o := range g.OptionData {
			od := plainOption(o.OptionBase)
			od.AttributeIndex = &o.AttributeIndex
			doc.Options = append(doc.Options, od)
		}
	case *CombiningGroup:
		for _, o := range g.OptionData {
			doc.Options = append(doc.Options, plainOption(o.OptionBase))
		}
		for _, c := range g.Data {
			doc.Containers = append(doc.Containers, containerDocument(c))
		}
	case *ComplexGroup:
		for _, o := range g.OptionData {
			od := plainOption(o.OptionBase)
			od.ConditionMask = &o.Conditions.Mask
			od.ConditionValue = &o.Conditions.Value
			od.Indentation = o.Indentation
			od.SubGroup = o.SubGroup
			doc.Options = append(doc.Options, od)
		}
		for _, c := range g.Data {
			cd := containerDocument(&c.DataContainer)
			cd.AssociationMask = &c.Association.Mask
			cd.AssociationValue = &c.Association.Value
			doc.Containers = append(doc.Containers, cd)
		}
	}
	return doc
}

// FromDocument builds the group doc describes and normalizes it.
func FromDocument(doc *Document) (Group, error) {
	if doc.Name == "" {
		return nil, &MalformedDocumentError{Reason: "missing name"}
	}

	g, err := New(doc.Type, doc.Name)
	if err != nil {
		return nil, &MalformedDocumentError{Name: doc.Name, Reason: "unknown type", Err: err}
	}
	base := g.Base()
	base.Description = types.DescriptionText(doc.Description)
	base.Image = doc.Image
	base.Page = doc.Page
	base.Priority = doc.Priority
	base.DefaultSettings = doc.DefaultSettings

	if len(doc.Options) > g.MaxOptions() {
		return nil, &MalformedDocumentError{
			Name:   doc.Name,
			Reason: fmt.Sprintf("%d options", len(doc.Options)),
			Err:    &CapacityExceededError{Group: doc.Name, Type: doc.Type, Max: g.MaxOptions()},
		}
	}

	switch g := g.(type) {
	case *SingleGroup:
		for _, od := range doc.Options {
			o, _ := g.AddOption(od.Name)
			o.Description = types.DescriptionText(od.Description)
			od.fill(&o.Data)
		}
	case *MultiGroup:
		for _, od := range doc.Options {
			o, _ := g.AddOption(od.Name)
			o.Description = types.DescriptionText(od.Description)
			if od.Priority != nil {
				o.Priority = *od.Priority
			}
			od.fill(&o.Data)
		}
	case *ImcGroup:
		if err := fillImc(g, doc); err != nil {
			return nil, err
		}
	case *CombiningGroup:
		for _, od := range doc.Options {
			o := &CombiningOption{OptionBase: plainBase(od), group: g}
			g.OptionData = append(g.OptionData, o)
		}
		g.Data = g.Data[:0]
		for i := range doc.Containers {
			c := NewDataContainer(g)
			doc.Containers[i].fill(c)
			g.Data = append(g.Data, c)
		}
	case *ComplexGroup:
		for _, od := range doc.Options {
			o := &ComplexOption{OptionBase: plainBase(od), Indentation: od.Indentation, SubGroup: od.SubGroup, group: g}
			o.Conditions = types.NewMaskedSetting(deref(od.ConditionMask), deref(od.ConditionValue))
			g.OptionData = append(g.OptionData, o)
		}
		for i := range doc.Containers {
			cd := &doc.Containers[i]
			c := g.AddContainer(cd.Name)
			cd.fill(&c.DataContainer)
			c.Association = types.NewMaskedSetting(deref(cd.AssociationMask), deref(cd.AssociationValue))
		}
	}

	Normalize(g)
	return g, nil
}

func fillImc(g *ImcGroup, doc *Document) error {
	if doc.Identifier != nil {
		g.Identifier = *doc.Identifier
	}
	if err := g.Identifier.Validate(); err != nil {
		return &MalformedDocumentError{Name: doc.Name, Reason: "invalid identifier", Err: err}
	}
	if doc.DefaultEntry != nil {
		g.DefaultEntry = *doc.DefaultEntry
	}
	g.CanBeDisabled = doc.CanBeDisabled
	g.DefaultDisabled = doc.DefaultDisabled

	var claimed uint16
	for _, od := range doc.Options {
		if od.AttributeIndex == nil {
			continue
		}
		bit := uint16(1) << uint(*od.AttributeIndex)
		if claimed&bit != 0 {
			return &MalformedDocumentError{Name: doc.Name, Reason: fmt.Sprintf("attribute %d claimed twice", *od.AttributeIndex)}
		}
		claimed |= bit
	}
	// Options without an explicit index claim the lowest free ones in order.
	free := 0
	for _, od := range doc.Options {
		o := &ImcOption{OptionBase: plainBase(od), group: g}
		if od.AttributeIndex != nil {
			o.AttributeIndex = *od.AttributeIndex
		} else {
			for claimed&(1<<uint(free)) != 0 {
				free++
			}
			o.AttributeIndex = free
			claimed |= 1 << uint(free)
		}
		g.OptionData = append(g.OptionData, o)
	}
	return nil
}

func plainOption(b OptionBase) OptionDocument {
	return OptionDocument{Name: b.Name, Description: b.Description.String()}
}

func plainBase(od OptionDocument) OptionBase {
	return OptionBase{Name: od.Name, Description: types.DescriptionText(od.Description)}
}

func payloadOption(b OptionBase, c *DataContainer) OptionDocument {
	od := plainOption(b)
	od.Files = c.Files
	od.FileSwaps = c.FileSwaps
	od.Manipulations = c.Manipulations
	return od
}

func containerDocument(c *DataContainer) ContainerDocument {
	return ContainerDocument{
		Version:       DocumentVersion,
		Name:          c.Name,
		Files:         c.Files,
		FileSwaps:     c.FileSwaps,
		Manipulations: c.Manipulations,
	}
}

func (od *OptionDocument) fill(c *DataContainer) {
	fillPayload(c, od.Files, od.FileSwaps, od.Manipulations)
}

func (cd *ContainerDocument) fill(c *DataContainer) {
	c.Name = cd.Name
	fillPayload(c, cd.Files, cd.FileSwaps, cd.Manipulations)
}

func fillPayload(c *DataContainer, files map[types.GamePath]types.FullPath, swaps map[types.GamePath]types.GamePath, manips meta.Manipulations) {
	for k, v := range files {
		c.Files[k] = v
	}
	for k, v := range swaps {
		c.FileSwaps[k] = v
	}
	c.Manipulations.UnionWith(manips)
}

func deref(s *types.Setting) types.Setting {
	if s == nil {
		return 0
	}
	return *s
}

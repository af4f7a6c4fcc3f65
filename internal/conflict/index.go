// SPDX-License-Identifier: MPL-2.0

// Package conflict finds game paths and metadata records that more than one
// container of a mod writes.
//
// Every container gets a dense uint32 id; each redirected path maps to a
// roaring bitmap of the containers touching it, whether through a file or a
// swap, and each group maps to the bitmap of its own
// containers. A path conflicts across groups when its bitmap intersects more
// than one group bitmap.
package conflict

import (
	"cmp"
	"slices"

	"github.com/RoaringBitmap/roaring"

	"github.com/modweave/modweave/pkg/meta"
	"github.com/modweave/modweave/pkg/mod"
	"github.com/modweave/modweave/pkg/modgroup"
	"github.com/modweave/modweave/pkg/types"
)

// DefaultGroup is the group index reported for a mod's default container.
const DefaultGroup = -1

// Kinds of conflicting keys.
const (
	KindRedirection KeyKind = iota
	KindManipulation
)

type (
	// KeyKind says what a conflicting key addresses.
	KeyKind int

	// ContainerRef locates a container inside a mod.
	ContainerRef struct {
		// Group is the group index, or DefaultGroup.
		Group     int
		GroupName string
		// Container is the index inside Group.Containers().
		Container int
		Name      string
	}

	// Conflict is a key written by more than one container.
	Conflict struct {
		Kind       KeyKind
		Key        string
		Containers []ContainerRef
		// Swaps lists the writers of a redirection that use a file swap
		// rather than a file.
		Swaps []ContainerRef
		// CrossGroup is set when the writers belong to different groups.
		// Writers inside one group may be mutually exclusive options.
		CrossGroup bool
	}

	// Index maps keys to the containers that write them.
	Index struct {
		refs   []ContainerRef
		groups map[int]*roaring.Bitmap
		keys   map[indexKey]*roaring.Bitmap
		swaps  map[string]*roaring.Bitmap
	}

	indexKey struct {
		kind KeyKind
		key  string
	}
)

// String returns the key kind name.
func (k KeyKind) String() string {
	switch k {
	case KindRedirection:
		return "redirection"
	case KindManipulation:
		return "manipulation"
	default:
		return "unknown"
	}
}

// Build indexes every container of m.
func Build(m *mod.Mod) *Index {
	ix := &Index{
		groups: make(map[int]*roaring.Bitmap),
		keys:   make(map[indexKey]*roaring.Bitmap),
		swaps:  make(map[string]*roaring.Bitmap),
	}
	for gi, g := range m.Groups {
		if imc, ok := g.(*modgroup.ImcGroup); ok {
			record := meta.NewManipulations(meta.ImcManipulation{ImcIdentifier: imc.Identifier})
			ix.add(ContainerRef{Group: gi, GroupName: imc.Name, Name: imc.Name}, nil, nil, record)
			continue
		}
		for ci, c := range g.Containers() {
			ix.add(ContainerRef{Group: gi, GroupName: g.Base().Name, Container: ci, Name: c.Name}, c.Files, c.FileSwaps, c.Manipulations)
		}
	}
	ix.add(ContainerRef{Group: DefaultGroup, Container: 0, Name: m.Default.Name}, m.Default.Files, m.Default.FileSwaps, m.Default.Manipulations)
	return ix
}

func (ix *Index) add(ref ContainerRef, files map[types.GamePath]types.FullPath, swaps map[types.GamePath]types.GamePath, manipulations meta.Manipulations) {
	id := uint32(len(ix.refs))
	ix.refs = append(ix.refs, ref)

	bm, ok := ix.groups[ref.Group]
	if !ok {
		bm = roaring.New()
		ix.groups[ref.Group] = bm
	}
	bm.Add(id)

	for path := range files {
		ix.mark(indexKey{kind: KindRedirection, key: string(path)}, id)
	}
	for path := range swaps {
		ix.mark(indexKey{kind: KindRedirection, key: string(path)}, id)
		markBitmap(ix.swaps, string(path), id)
	}
	for identity := range manipulations {
		ix.mark(indexKey{kind: KindManipulation, key: identity.String()}, id)
	}
}

func (ix *Index) mark(k indexKey, id uint32) {
	markBitmap(ix.keys, k, id)
}

func markBitmap[K comparable](bitmaps map[K]*roaring.Bitmap, k K, id uint32) {
	bm, ok := bitmaps[k]
	if !ok {
		bm = roaring.New()
		bitmaps[k] = bm
	}
	bm.Add(id)
}

// Containers returns the containers that write key of kind, in mod order.
func (ix *Index) Containers(kind KeyKind, key string) []ContainerRef {
	bm, ok := ix.keys[indexKey{kind: kind, key: key}]
	if !ok {
		return nil
	}
	return ix.resolve(bm)
}

// ContainerCount returns the number of indexed containers.
func (ix *Index) ContainerCount() int { return len(ix.refs) }

// Conflicts lists every key written by more than one container, sorted by
// kind and key. With crossGroupOnly set, keys written inside a single group
// only are left out.
func (ix *Index) Conflicts(crossGroupOnly bool) []Conflict {
	var out []Conflict
	for k, bm := range ix.keys {
		if bm.GetCardinality() < 2 {
			continue
		}
		cross := ix.spansGroups(bm)
		if crossGroupOnly && !cross {
			continue
		}
		c := Conflict{Kind: k.kind, Key: k.key, Containers: ix.resolve(bm), CrossGroup: cross}
		if swaps, ok := ix.swaps[k.key]; ok && k.kind == KindRedirection {
			c.Swaps = ix.resolve(roaring.And(bm, swaps))
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Conflict) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Key, b.Key))
	})
	return out
}

// GroupOverlap returns how many keys groups a and b both write.
func (ix *Index) GroupOverlap(a, b int) int {
	ga, gb := ix.groups[a], ix.groups[b]
	if ga == nil || gb == nil {
		return 0
	}
	n := 0
	for _, bm := range ix.keys {
		if bm.Intersects(ga) && bm.Intersects(gb) {
			n++
		}
	}
	return n
}

func (ix *Index) spansGroups(bm *roaring.Bitmap) bool {
	seen := 0
	for _, g := range ix.groups {
		if bm.Intersects(g) {
			seen++
			if seen > 1 {
				return true
			}
		}
	}
	return false
}

func (ix *Index) resolve(bm *roaring.Bitmap) []ContainerRef {
	out := make([]ContainerRef, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, ix.refs[it.Next()])
	}
	return out
}

// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	ModNotFoundId
	ConfigLoadFailedId
	DuplicateGroupNameId
	InvalidGroupNameId
	CapacityExceededId
	MalformedGroupDocumentId
	UnsupportedTypeChangeId
	IndexOutOfRangeId
	SaveFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

A file referenced by the command does not exist.

## Things you can try:
- Check the path for typos
- Paths inside a mod are relative to the mod directory`,
	}

	modNotFoundIssue = &Issue{
		id: ModNotFoundId,
		mdMsg: `
# Mod not found!

The directory exists but holds no readable meta.json, or does not exist at all.

## Things you can try:
- List the mods modweave knows about:
~~~
$ modweave mods list
~~~

- Create a new mod:
~~~
$ modweave mods create my-mod "My Mod"
~~~

- Point modweave at another mod directory in config.cue:
~~~cue
mod_directory: "/path/to/mods"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ modweave config show
~~~

- Write a fresh default file:
~~~
$ modweave config init
~~~

## Valid values:
~~~cue
replace_non_ascii_on_import: false
save: {
	mode:  "immediate" // or "queued"
	delay: "500ms"
}
log: level: "info" // debug, info, warn, error
~~~`,
	}

	duplicateGroupNameIssue = &Issue{
		id: DuplicateGroupNameId,
		mdMsg: `
# Duplicate group name!

Group names double as file names, so two groups of one mod may not share a
name. The comparison ignores case and runs after file-name sanitization.

## Things you can try:
- Pick a different name
- Rename the existing group first:
~~~
$ modweave group rename my-mod 0 "New Name"
~~~`,
	}

	invalidGroupNameIssue = &Issue{
		id: InvalidGroupNameId,
		mdMsg: `
# Invalid group name!

The name is empty after trimming whitespace and removing characters that are
not allowed in file names.

## Things you can try:
- Use a name containing at least one letter or digit`,
	}

	capacityExceededIssue = &Issue{
		id: CapacityExceededId,
		mdMsg: `
# Group is full!

Every group kind caps its option count:

| Kind      | Maximum options |
|-----------|-----------------|
| Single    | 2^31 - 1        |
| Multi     | 63              |
| Imc       | 10              |
| Combining | 8               |
| Complex   | 63              |

## Things you can try:
- Split the options over a second group
- Change a Combining group to Multi if the power set is not needed`,
	}

	malformedGroupDocumentIssue = &Issue{
		id: MalformedGroupDocumentId,
		mdMsg: `
# Malformed group document!

A group file failed validation and was skipped. The rest of the mod loaded
normally.

## Things you can try:
- Check the reported field path in the group file
- Run with --verbose to see the full error chain
- Restore the file from a backup and reload the mod`,
	}

	unsupportedTypeChangeIssue = &Issue{
		id: UnsupportedTypeChangeId,
		mdMsg: `
# Unsupported group type change!

Only Single and Multi groups convert into each other. Other kinds store data
that has no equivalent in the target kind.

## Things you can try:
- Create a new group of the wanted kind and move the files over`,
	}

	indexOutOfRangeIssue = &Issue{
		id: IndexOutOfRangeId,
		mdMsg: `
# Index out of range!

The group, option or container index does not exist.

## Things you can try:
- List the groups and their options with indices:
~~~
$ modweave groups list my-mod
~~~`,
	}

	saveFailedIssue = &Issue{
		id: SaveFailedId,
		mdMsg: `
# Failed to save!

The edit was applied in memory but could not be written to disk. Observers
were still notified.

## Things you can try:
- Check free disk space and directory permissions
- Retry the edit; unchanged documents are rewritten as well`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Things you can try:
- Check file/directory permissions of the mod directory
- Run modweave from an account that owns the mods`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():           fileNotFoundIssue,
		modNotFoundIssue.Id():            modNotFoundIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		duplicateGroupNameIssue.Id():     duplicateGroupNameIssue,
		invalidGroupNameIssue.Id():       invalidGroupNameIssue,
		capacityExceededIssue.Id():       capacityExceededIssue,
		malformedGroupDocumentIssue.Id(): malformedGroupDocumentIssue,
		unsupportedTypeChangeIssue.Id():  unsupportedTypeChangeIssue,
		indexOutOfRangeIssue.Id():        indexOutOfRangeIssue,
		saveFailedIssue.Id():             saveFailedIssue,
		permissionDeniedIssue.Id():       permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	values := slices.Collect(maps.Values(issues))
	slices.SortFunc(values, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}

package catalog

import (
	"path/filepath"
	"strings"
)

// FileType classifies a node of the catalog tree. Values are bit flags so
// recursive enumeration can select several types at once.
type FileType int

const (
	TypeGame FileType = 1 << iota
	TypeFolder
	TypePlaceholder
)

func (t FileType) String() string {
	switch t {
	case TypeGame:
		return "game"
	case TypeFolder:
		return "folder"
	case TypePlaceholder:
		return "placeholder"
	}
	return "unknown"
}

// FileData is a node of a system's catalog tree. A node is either a real
// entry owning its MetaData, or an alias that forwards every metadata access
// to the real entry it was created from. Children are keyed by full path.
type FileData struct {
	typ      FileType
	path     string
	system   string
	metadata *MetaData
	source   *FileData

	parent   *FileData
	children []*FileData
	byPath   map[string]*FileData
}

// NewGame creates a real game entry. A nil md gets an empty record.
func NewGame(path, system string, md *MetaData) *FileData {
	if md == nil {
		md = NewMetaData()
	}
	return &FileData{typ: TypeGame, path: path, system: system, metadata: md}
}

// NewFolder creates a real folder entry.
func NewFolder(path, system string) *FileData {
	return &FileData{
		typ:      TypeFolder,
		path:     path,
		system:   system,
		metadata: NewMetaData(),
		byPath:   make(map[string]*FileData),
	}
}

// NewAlias creates an entry for system that references source. Aliases of
// aliases collapse onto the real entry.
func NewAlias(source *FileData, system string) *FileData {
	src := source.Source()
	return &FileData{typ: src.typ, path: src.path, system: system, source: src}
}

func (f *FileData) Type() FileType { return f.typ }

// Path is the full path of the underlying real entry and the identity key everywhere.
func (f *FileData) Path() string { return f.path }

// SystemName is the system this node belongs to. For an alias that is the
// collection, use Source().SystemName() for the real system.
func (f *FileData) SystemName() string { return f.system }

// Source returns the real entry behind f; real entries return themselves.
func (f *FileData) Source() *FileData {
	if f.source != nil {
		return f.source
	}
	return f
}

func (f *FileData) IsAlias() bool { return f.source != nil }

// Metadata returns the real entry's record.
func (f *FileData) Metadata() *MetaData { return f.Source().metadata }

// Name is the display name: the name metadata, or the file stem when unset.
func (f *FileData) Name() string {
	if name := strings.TrimSpace(f.Metadata().Get(MetaName)); name != "" {
		return name
	}
	return Stem(f.path)
}

// Stem returns the base file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func (f *FileData) Parent() *FileData { return f.parent }

// Children returns the direct children in display order. The slice must not be modified.
func (f *FileData) Children() []*FileData { return f.children }

// ChildrenByPath exposes the path index of the direct children. The map must not be modified.
func (f *FileData) ChildrenByPath() map[string]*FileData { return f.byPath }

// Child looks up a direct child by full path.
func (f *FileData) Child(path string) *FileData {
	if f.byPath == nil {
		return nil
	}
	return f.byPath[path]
}

// AddChild appends child unless a child with the same path exists. It reports
// whether the child was added.
func (f *FileData) AddChild(child *FileData) bool {
	if f.byPath == nil {
		f.byPath = make(map[string]*FileData)
	}
	if _, ok := f.byPath[child.path]; ok {
		return false
	}
	child.parent = f
	f.children = append(f.children, child)
	f.byPath[child.path] = child
	return true
}

// RemoveChild detaches child, reporting whether it was present.
func (f *FileData) RemoveChild(child *FileData) bool {
	cur, ok := f.byPath[child.path]
	if !ok || cur != child {
		return false
	}
	delete(f.byPath, child.path)
	for i, c := range f.children {
		if c == child {
			f.children = append(f.children[:i], f.children[i+1:]...)
			break
		}
	}
	child.parent = nil
	return true
}

// ClearChildren detaches every child.
func (f *FileData) ClearChildren() {
	for _, c := range f.children {
		c.parent = nil
	}
	f.children = nil
	f.byPath = make(map[string]*FileData)
}

// FilesRecursive returns every descendant whose type is in mask, depth first.
func (f *FileData) FilesRecursive(mask FileType) []*FileData {
	var out []*FileData
	for _, c := range f.children {
		if c.typ&mask != 0 {
			out = append(out, c)
		}
		if len(c.children) > 0 {
			out = append(out, c.FilesRecursive(mask)...)
		}
	}
	return out
}

package memfs

import (
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
)

// snap is the JSON shape of one persisted node.
type snap struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Dir      bool    `json:"dir"`
	Content  string  `json:"content,omitempty"`
	MIME     string  `json:"mime,omitempty"`
	Children []*snap `json:"children,omitempty"`
}

// Snapshot serializes the whole tree to JSON, children sorted by name.
func (fs *FS) Snapshot() ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return sonic.Marshal(toSnap(fs.root))
}

// Restore replaces the store's contents with a previously taken
// snapshot.
func (fs *FS) Restore(data []byte) error {
	var root snap
	if err := sonic.Unmarshal(data, &root); err != nil {
		return err
	}
	if !root.Dir {
		return fmt.Errorf("snapshot root is not a directory")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.root = fromSnap(&root)
	return nil
}

func toSnap(n *node) *snap {
	s := &snap{
		ID:      n.id,
		Name:    n.name,
		Dir:     n.dir,
		Content: n.content,
		MIME:    n.mime,
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Children = append(s.Children, toSnap(n.children[name]))
	}
	return s
}

func fromSnap(s *snap) *node {
	n := &node{
		id:      s.ID,
		name:    s.Name,
		dir:     s.Dir,
		content: s.Content,
		mime:    s.MIME,
	}
	if s.Dir {
		n.children = make(map[string]*node, len(s.Children))
		for _, c := range s.Children {
			n.children[c.Name] = fromSnap(c)
		}
	}
	return n
}

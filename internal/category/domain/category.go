package domain

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusDeleted
}

type Category struct {
	ID          string    `json:"id"`
	ParentID    *string   `json:"parent_id,omitempty"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Node is a category with its active children, as served to the storefront.
type Node struct {
	Category
	Children []Node `json:"children"`
}

// BuildTree nests cats by parent. Entries whose parent is missing from cats are dropped with
// their subtree, so a hidden parent hides its descendants. Siblings keep the order of cats.
func BuildTree(cats []Category) []Node {
	present := make(map[string]bool, len(cats))
	for _, c := range cats {
		present[c.ID] = true
	}
	children := make(map[string][]Category)
	var roots []Category
	for _, c := range cats {
		switch {
		case c.ParentID == nil || *c.ParentID == c.ID:
			roots = append(roots, c)
		case present[*c.ParentID]:
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	var build func(cs []Category, depth int) []Node
	build = func(cs []Category, depth int) []Node {
		out := make([]Node, 0, len(cs))
		for _, c := range cs {
			n := Node{Category: c, Children: []Node{}}
			if depth < 16 {
				n.Children = build(children[c.ID], depth+1)
			}
			out = append(out, n)
		}
		return out
	}
	return build(roots, 0)
}

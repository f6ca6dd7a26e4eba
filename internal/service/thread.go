package service

import (
	"sort"

	"wayfarer/internal/models"
)

// ThreadNode is one reply positioned in the assembled thread tree.
type ThreadNode struct {
	Reply    *models.Reply `json:"reply"`
	Depth    int           `json:"depth"`
	CanReply bool          `json:"can_reply"`
	Children []*ThreadNode `json:"children,omitempty"`
}

// AssembleThread converts the flat reply set of one post into a forest of
// bounded-depth trees, one per top-level reply.
//
// Guarantees: deterministic under stable input, every supplied reply
// appears exactly once, and the walk always terminates. A reply whose
// parent is not among the supplied replies is treated as a root (deliberate
// tolerance, not an error). A parent chain that loops is broken by
// re-rooting the node at which the cycle closes. Replies nested deeper
// than models.MaxReplyDepth, possible after a relaxed import, are
// flattened under their depth-limit ancestor as leaves with the reply
// affordance withheld.
func AssembleThread(replies []*models.Reply) []*ThreadNode {
	byID := make(map[uint]*models.Reply, len(replies))
	for _, r := range replies {
		byID[r.ID] = r
	}

	// Effective parent per reply: nil for roots, after orphan promotion
	// and cycle breaking.
	parentOf := make(map[uint]*uint, len(replies))
	for _, r := range replies {
		parentOf[r.ID] = effectiveParent(r, byID, parentOf)
	}

	children := make(map[uint][]*models.Reply)
	var roots []*models.Reply
	for _, r := range replies {
		if p := parentOf[r.ID]; p != nil {
			children[*p] = append(children[*p], r)
		} else {
			roots = append(roots, r)
		}
	}

	sortReplies(roots)
	for _, rs := range children {
		sortReplies(rs)
	}

	forest := make([]*ThreadNode, 0, len(roots))
	for _, root := range roots {
		forest = append(forest, buildNode(root, 0, children))
	}
	return forest
}

// effectiveParent resolves r's parent link, promoting orphans to roots and
// breaking cycles. Results already computed for ancestors are reused via
// the resolved map.
func effectiveParent(r *models.Reply, byID map[uint]*models.Reply, resolved map[uint]*uint) *uint {
	if r.ParentReplyID == nil {
		return nil
	}
	if _, ok := byID[*r.ParentReplyID]; !ok {
		// Orphan: parent not among the supplied replies.
		return nil
	}

	// Walk the ancestor chain; revisiting r means its parent points into
	// r's own descendants, so r becomes a root to guarantee termination.
	seen := map[uint]bool{r.ID: true}
	cur := byID[*r.ParentReplyID]
	for {
		if seen[cur.ID] {
			return nil
		}
		seen[cur.ID] = true

		if p, ok := resolved[cur.ID]; ok {
			if p == nil {
				break
			}
			cur = byID[*p]
			continue
		}
		if cur.ParentReplyID == nil {
			break
		}
		next, ok := byID[*cur.ParentReplyID]
		if !ok {
			break
		}
		cur = next
	}
	return r.ParentReplyID
}

func buildNode(r *models.Reply, depth int, children map[uint][]*models.Reply) *ThreadNode {
	node := &ThreadNode{
		Reply:    r,
		Depth:    depth,
		CanReply: depth < models.MaxReplyDepth,
	}
	if depth < models.MaxReplyDepth {
		for _, c := range children[r.ID] {
			node.Children = append(node.Children, buildNode(c, depth+1, children))
		}
		return node
	}

	// At the depth limit: descendants, if any exist in the data, are
	// rendered flatly as leaves with the reply affordance withheld.
	for _, leaf := range flatten(r.ID, children) {
		node.Children = append(node.Children, &ThreadNode{
			Reply:    leaf,
			Depth:    depth,
			CanReply: false,
		})
	}
	return node
}

func flatten(id uint, children map[uint][]*models.Reply) []*models.Reply {
	var out []*models.Reply
	for _, c := range children[id] {
		out = append(out, c)
		out = append(out, flatten(c.ID, children)...)
	}
	return out
}

func sortReplies(rs []*models.Reply) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].CreatedAt.Before(rs[j].CreatedAt)
	})
}

// ThreadSize counts the nodes in an assembled forest, flattened leaves
// included.
func ThreadSize(forest []*ThreadNode) int {
	total := 0
	for _, n := range forest {
		total += 1 + ThreadSize(n.Children)
	}
	return total
}

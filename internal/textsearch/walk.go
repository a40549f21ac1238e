package textsearch

import "golang.org/x/net/html"

// FindAll returns, in document order, every descendant of root whose type is
// kind and for which accept returns true. root itself is never visited. A nil
// accept accepts every node of the requested kind.
func FindAll(root *html.Node, kind html.NodeType, accept func(*html.Node) bool) []*html.Node {
	found := make([]*html.Node, 0)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		found = findAll(c, kind, accept, found)
	}
	return found
}

func findAll(n *html.Node, kind html.NodeType, accept func(*html.Node) bool, found []*html.Node) []*html.Node {
	if n.Type == kind && (accept == nil || accept(n)) {
		found = append(found, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		found = findAll(c, kind, accept, found)
	}
	return found
}

// Unique drops repeated nodes, keeping the first occurrence of each.
func Unique(nodes []*html.Node) []*html.Node {
	seen := make(map[*html.Node]struct{}, len(nodes))
	out := make([]*html.Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

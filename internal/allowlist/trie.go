package allowlist

import "strings"

const wildcardLabel = "*"

type trieNode struct {
	children map[string]*trieNode
	terminal bool
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// domainTrie stores domains label by label from the TLD inwards, so
// "app.example.com" is walked as com -> example -> app.
type domainTrie struct {
	root *trieNode
}

func newDomainTrie() *domainTrie {
	return &domainTrie{root: newTrieNode()}
}

func (t *domainTrie) insert(domain string) {
	parts := strings.Split(domain, ".")
	node := t.root

	for i := len(parts) - 1; i >= 0; i-- {
		child, exists := node.children[parts[i]]
		if !exists {
			child = newTrieNode()
			node.children[parts[i]] = child
		}
		node = child
	}

	node.terminal = true
}

// match reports whether domain ends on a terminal node. Exact labels are
// preferred; a "*" child matches exactly one label in its place.
func (t *domainTrie) match(domain string) bool {
	parts := strings.Split(domain, ".")
	return t.matchFrom(t.root, parts, len(parts)-1)
}

func (t *domainTrie) matchFrom(node *trieNode, parts []string, idx int) bool {
	if idx < 0 {
		return node.terminal
	}

	if child, exists := node.children[parts[idx]]; exists && t.matchFrom(child, parts, idx-1) {
		return true
	}

	if child, exists := node.children[wildcardLabel]; exists {
		return t.matchFrom(child, parts, idx-1)
	}

	return false
}

func (t *domainTrie) all() []string {
	var result []string

	var traverse func(node *trieNode, path []string)
	traverse = func(node *trieNode, path []string) {
		if node.terminal {
			result = append(result, strings.Join(reverseSlice(path), "."))
		}
		for part, child := range node.children {
			traverse(child, append(path, part))
		}
	}

	traverse(t.root, []string{})
	return result
}

func reverseSlice(slice []string) []string {
	reversed := make([]string, len(slice))
	for i, v := range slice {
		reversed[len(slice)-1-i] = v
	}
	return reversed
}

package store

import (
	"strings"
	"sync"
)

// defaultTagAliases folds common spellings into the canonical catalog tags.
var defaultTagAliases = map[string]string{
	"golang":      "go",
	"js":          "javascript",
	"ts":          "typescript",
	"k8s":         "kubernetes",
	"ci":          "ci-cd",
	"cicd":        "ci-cd",
	"codereview":  "code-review",
	"code review": "code-review",
	"unittest":    "testing",
	"unit-test":   "testing",
	"tests":       "testing",
	"docs":        "documentation",
	"refactor":    "refactoring",
	"llm":         "ai-agents",
	"agents":      "ai-agents",
}

// TagMap resolves free-form tags to their canonical form. Unknown tags
// resolve to themselves (lowercased).
type TagMap struct {
	mu      sync.RWMutex
	aliases map[string]string
}

func NewTagMap(aliases map[string]string) *TagMap {
	m := &TagMap{aliases: make(map[string]string, len(aliases))}
	for alias, canonical := range aliases {
		m.aliases[strings.ToLower(alias)] = strings.ToLower(canonical)
	}
	return m
}

func (m *TagMap) Resolve(tag string) string {
	lower := strings.ToLower(strings.TrimSpace(tag))
	m.mu.RLock()
	defer m.mu.RUnlock()
	if canonical, ok := m.aliases[lower]; ok {
		return canonical
	}
	return lower
}

// ResolveSet canonicalizes a tag list, dropping duplicates while keeping
// the order of first appearance.
func (m *TagMap) ResolveSet(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		canonical := m.Resolve(t)
		if canonical == "" {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

func (m *TagMap) List() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.aliases))
	for alias, canonical := range m.aliases {
		out[alias] = canonical
	}
	return out
}

func (m *TagMap) Upsert(alias, canonical string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases[strings.ToLower(strings.TrimSpace(alias))] = strings.ToLower(strings.TrimSpace(canonical))
}

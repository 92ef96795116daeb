// Package transcript turns a raw agent-session transcript into a structured
// document: turns split on role markers, secrets redacted, basic stats, and
// a markdown rendering.
package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrEmpty = errors.New("transcript is empty")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Stats struct {
	TurnsByRole  map[string]int `json:"turns_by_role"`
	Words        int            `json:"words"`
	ApproxTokens int            `json:"approx_tokens"`
}

type Document struct {
	Turns []Turn `json:"turns"`
	Stats Stats  `json:"stats"`
}

// roleMarker matches "user:", "Assistant :", etc. at the start of a line.
var roleMarker = regexp.MustCompile(`(?im)^(user|assistant|system|tool)\s*:\s*`)

// secretPatterns cover the token shapes that show up pasted into agent
// sessions: OpenAI-style keys, GitHub PATs, AWS access key IDs, Slack
// tokens, and bearer headers.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{16,}\b`),
	regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`),
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`),
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]{16,}=*`),
}

const redactedMark = "[redacted]"

// Process splits the raw transcript into turns. Content before the first
// role marker (or a transcript with no markers at all) becomes a single
// system turn.
func Process(raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmpty
	}

	var turns []Turn
	markers := roleMarker.FindAllStringSubmatchIndex(raw, -1)

	appendTurn := func(role, content string) {
		content = strings.TrimSpace(Redact(content))
		if content == "" {
			return
		}
		turns = append(turns, Turn{Role: role, Content: content})
	}

	if len(markers) == 0 {
		appendTurn(RoleSystem, raw)
	} else {
		if prologue := raw[:markers[0][0]]; strings.TrimSpace(prologue) != "" {
			appendTurn(RoleSystem, prologue)
		}
		for i, m := range markers {
			role := strings.ToLower(raw[m[2]:m[3]])
			end := len(raw)
			if i+1 < len(markers) {
				end = markers[i+1][0]
			}
			appendTurn(role, raw[m[1]:end])
		}
	}

	if len(turns) == 0 {
		return nil, ErrEmpty
	}

	doc := &Document{Turns: turns}
	doc.Stats = computeStats(turns)
	return doc, nil
}

// Redact replaces secret-looking tokens with a fixed marker.
func Redact(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllString(s, redactedMark)
	}
	return s
}

func computeStats(turns []Turn) Stats {
	st := Stats{TurnsByRole: make(map[string]int)}
	for _, t := range turns {
		st.TurnsByRole[t.Role]++
		st.Words += len(strings.Fields(t.Content))
	}
	// Rough 4 tokens per 3 words.
	st.ApproxTokens = (st.Words*4 + 2) / 3
	return st
}

// Markdown renders the document as a headed transcript.
func (d *Document) Markdown() string {
	var b strings.Builder
	b.WriteString("# Transcript\n")
	for _, t := range d.Turns {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", strings.ToUpper(t.Role[:1])+t.Role[1:], t.Content)
	}
	fmt.Fprintf(&b, "\n---\n%d turns, %d words, ~%d tokens\n", len(d.Turns), d.Stats.Words, d.Stats.ApproxTokens)
	return b.String()
}

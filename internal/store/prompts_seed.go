package store

import "time"

func seedTime(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// seedPrompts is the curated catalog shipped with the binary.
var seedPrompts = []Prompt{
	{
		ID:   "p-001",
		Slug: "code-review-companion",
		Type: ContentPrompt, Category: "engineering",
		Title:       "Code Review Companion",
		Description: "Turns an agent into a rigorous, line-aware code reviewer that separates blocking defects from style nits.",
		Body: "You are a senior engineer reviewing a pull request. Read the full diff before " +
			"commenting. Classify every finding as BLOCKING, SUGGESTION, or NIT. For each " +
			"finding cite the file and line, explain the failure mode you are worried about, " +
			"and propose a concrete fix. Never restate the diff back to the author.",
		Tags:     []string{"code-review", "go", "quality"},
		AuthorID: "u-jeffrey", AuthorName: "Jeffrey",
		CreatedAt: seedTime("2025-11-04"),
	},
	{
		ID:   "p-002",
		Slug: "bug-triage-workflow",
		Type: ContentWorkflow, Category: "engineering",
		Title:       "Bug Triage Workflow",
		Description: "A four-step workflow for reproducing, isolating, and fixing a reported defect before touching any code.",
		Body: "Step 1: restate the reported behavior and the expected behavior. Step 2: " +
			"reproduce with the smallest input you can construct; if you cannot reproduce, " +
			"stop and report what you tried. Step 3: bisect the cause with targeted logging " +
			"or tests, not speculation. Step 4: fix, then add the regression test that would " +
			"have caught it.",
		Tags:     []string{"debugging", "testing", "process"},
		AuthorID: "u-jeffrey", AuthorName: "Jeffrey",
		CreatedAt: seedTime("2025-11-12"),
	},
	{
		ID:   "p-003",
		Slug: "api-design-critic",
		Type: ContentPrompt, Category: "engineering",
		Title:       "API Design Critic",
		Description: "Reviews a proposed HTTP or library API for consistency, error semantics, and future compatibility.",
		Body: "Given an API sketch, evaluate: naming consistency with the rest of the " +
			"surface, error contract (what fails, how callers observe it), versioning and " +
			"compatibility cost of each field, and what the API makes impossible to express. " +
			"Rank issues by the cost of fixing them after release.",
		Tags:     []string{"api", "design", "http"},
		AuthorID: "u-maya", AuthorName: "Maya Okafor",
		CreatedAt: seedTime("2025-12-01"),
	},
	{
		ID:   "p-004",
		Slug: "test-writing-skill",
		Type: ContentSkill, Category: "engineering",
		Title:       "Table-Driven Test Author",
		Description: "Teaches an agent to write table-driven tests that cover boundaries first and happy paths second.",
		Body: "When asked for tests: enumerate the boundaries of every input (empty, one, " +
			"many, maximum, malformed) before writing any case. Prefer one table with named " +
			"cases over repeated functions. Each case asserts one behavior; the case name " +
			"states the expectation, not the input.",
		Tags:     []string{"testing", "go", "quality"},
		AuthorID: "u-jeffrey", AuthorName: "Jeffrey",
		CreatedAt: seedTime("2026-01-09"),
	},
	{
		ID:   "p-005",
		Slug: "incident-writeup-bundle",
		Type: ContentBundle, Category: "operations",
		Title:       "Incident Writeup Bundle",
		Description: "Prompt pair for drafting and then red-teaming a post-incident review document.",
		Body: "Drafting prompt: reconstruct the timeline from the raw notes, separating " +
			"observation from inference, and name every contributing cause without assigning " +
			"blame. Red-team prompt: attack the draft's timeline for gaps, challenge each " +
			"remediation item for measurability, and flag hindsight bias.",
		Tags:     []string{"operations", "incident", "process"},
		AuthorID: "u-maya", AuthorName: "Maya Okafor",
		CreatedAt: seedTime("2026-02-17"),
	},
	{
		ID:   "p-006",
		Slug: "refactoring-collection",
		Type: ContentCollection, Category: "engineering",
		Title:       "Refactoring Moves Collection",
		Description: "A curated set of prompts for common refactoring moves: extract, inline, rename, and seam-finding.",
		Body: "Each prompt in this collection constrains the agent to one mechanical move " +
			"at a time, requires the test suite to pass between moves, and forbids behavior " +
			"changes disguised as cleanup. Start with the seam-finding prompt when the code " +
			"has no tests at all.",
		Tags:     []string{"refactoring", "legacy", "go"},
		AuthorID: "u-sam", AuthorName: "Sam Whitfield",
		CreatedAt: seedTime("2026-03-02"),
	},
	{
		ID:   "p-007",
		Slug: "docs-from-code",
		Type: ContentPrompt, Category: "writing",
		Title:       "Docs From Code",
		Description: "Generates reference documentation from source, written for the reader who has not seen the code.",
		Body: "Document the public surface only. For every exported symbol state what it " +
			"does, when to use it, and what fails. Pull examples from the tests, not from " +
			"imagination. If the code's behavior surprises you, flag it for the maintainer " +
			"instead of documenting the surprise as intended.",
		Tags:     []string{"documentation", "writing"},
		AuthorID: "u-sam", AuthorName: "Sam Whitfield",
		CreatedAt: seedTime("2026-04-21"),
	},
	{
		ID:   "p-008",
		Slug: "migration-planner",
		Type: ContentWorkflow, Category: "operations",
		Title:       "Schema Migration Planner",
		Description: "Plans a zero-downtime database migration as a sequence of independently shippable steps.",
		Body: "Produce a step list where every step is forward-compatible with the previous " +
			"deploy and reversible on its own: expand, backfill, verify counts, switch reads, " +
			"switch writes, contract. For each step name the check that proves it safe to " +
			"proceed and the trigger that would roll it back.",
		Tags:     []string{"database", "migration", "operations"},
		AuthorID: "u-jeffrey", AuthorName: "Jeffrey",
		CreatedAt: seedTime("2026-06-30"),
	},
}

// Package ast defines the parser's output node types (spec.md §3 "AST Nodes").
package ast

import "github.com/lifo-sh/lifo-sh/shell/token"

// Word is an ordered sequence of parts, as produced by the lexer.
type Word struct {
	Parts []token.WordPart
}

// Connector joins successive pipelines in a List.
type Connector int

const (
	ConnNone Connector = iota
	ConnAnd            // &&
	ConnOr             // ||
)

// RedirOp is a redirection operator.
type RedirOp int

const (
	RedirOut RedirOp = iota
	RedirAppend
	RedirIn
	RedirErr
	RedirErrAppend
	RedirAll
	RedirHeredoc
	RedirHeredocStrip
)

// Redirection attaches a target Word to an operator, with an optional
// explicit file-descriptor hint (spec.md §3 "Redirection").
type Redirection struct {
	Operator RedirOp
	Target   Word
	FDHint   *uint8
	// HeredocBody is populated by the parser for RedirHeredoc(Strip) once
	// the body lines up to the delimiter have been collected.
	HeredocBody string
}

// Assignment is a NAME=Word pair preceding a simple command, or a
// standalone ShellState mutation when no command follows.
type Assignment struct {
	Name  string
	Value Word
}

// SimpleCommand is a command name, its arguments, leading assignments,
// and redirections (spec.md §3 "SimpleCommand").
type SimpleCommand struct {
	Assignments  []Assignment
	Words        []Word
	Redirections []Redirection
}

// CaseItem is one `pattern | pattern) body ;;` clause.
type CaseItem struct {
	Patterns []Word
	Body     List
}

// ForClause is a `for name [in words] do list done` node.
type ForClause struct {
	Name         string
	Words        []Word // nil means "iterate positional params"
	HasWordsList bool
	Body         List
}

// IfClause is an `if/elif/else` chain; each branch pairs a condition
// List with a body List. The final branch may have a nil Condition to
// represent a trailing `else`.
type IfBranch struct {
	Condition *List // nil for the else branch
	Body      List
}

type IfClause struct {
	Branches []IfBranch
}

// LoopKind distinguishes while/until.
type LoopKind int

const (
	LoopWhile LoopKind = iota
	LoopUntil
)

type LoopClause struct {
	Kind      LoopKind
	Condition List
	Body      List
}

type CaseClause struct {
	Subject Word
	Items   []CaseItem
}

type FunctionDef struct {
	Name string
	Body *CompoundCommand
}

type Group struct {
	Body List
}

// CompoundKind tags which field of CompoundCommand is populated.
type CompoundKind int

const (
	KindSimple CompoundKind = iota
	KindIf
	KindFor
	KindLoop
	KindCase
	KindFunctionDef
	KindGroup
)

// CompoundCommand is the tagged union spec.md §3 names as the unit a
// Pipeline is built from.
type CompoundCommand struct {
	Kind CompoundKind

	Simple      *SimpleCommand
	If          *IfClause
	For         *ForClause
	Loop        *LoopClause
	Case        *CaseClause
	FunctionDef *FunctionDef
	Group       *Group

	// Trailing redirections permitted on any compound command
	// (spec.md §4.8 "Trailing redirections on compound commands are permitted").
	Redirections []Redirection
}

// Pipeline is a (possibly negated) sequence of commands connected by `|`.
type Pipeline struct {
	Negated  bool
	Commands []*CompoundCommand
}

// ListEntry pairs a pipeline with the connector joining it to the next entry.
type ListEntry struct {
	Pipeline  Pipeline
	Connector Connector
}

// List is a sequence of pipelines joined by && / ||, optionally backgrounded.
type List struct {
	Entries    []ListEntry
	Background bool
}

// Script is the parser's top-level output.
type Script struct {
	Lists []List
}

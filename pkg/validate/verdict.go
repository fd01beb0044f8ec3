// Copyright 2025 Hush Network
//
// Package validate implements the content validator registry (spec.md
// §4.2): one validator per transaction kind, each either rejecting a
// signed transaction outright or returning it with a validator signature
// attached. Validators are read-only against the store; they never write
// state (spec.md §5 "Validator path").

package validate

import "github.com/hushnetwork-social/hush-server-node/pkg/codec"

// Outcome distinguishes a validator's two possible results (spec.md §9
// redesign: a two-variant Rejected|Validated result replaces a bare nil).
type Outcome int

const (
	// Rejected means the transaction failed content validation.
	Rejected Outcome = iota
	// Validated means the transaction passed and carries a validator signature.
	Validated
)

// Verdict is the result of running a content validator against a signed
// transaction. Exactly one of RejectReason / Transaction is meaningful,
// selected by Kind.
type Verdict struct {
	Kind         Outcome
	RejectReason string
	Transaction  *codec.ValidatedTransaction
}

// Accepted reports whether the verdict is Validated.
func (v Verdict) Accepted() bool {
	return v.Kind == Validated
}

func reject(reason string) Verdict {
	return Verdict{Kind: Rejected, RejectReason: reason}
}

func accept(tx *codec.ValidatedTransaction) Verdict {
	return Verdict{Kind: Validated, Transaction: tx}
}

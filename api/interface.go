// File: api/interface.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Static interface/message descriptors, generated elsewhere from a
// schema in a real deployment (see spec's out-of-scope code generator)
// but hand-authored here for the one interface this runtime ships with
// (the core display interface) plus whatever a consumer registers.

package api

// Message describes one request or one event: its name, its signature
// string, and — for every 'o'/'n' argument — the interface it is typed
// as. Types[i] is nil for non-object arguments and for the generic
// new_id case used only by bind, where the target interface travels on
// the wire as a preceding string+uint pair instead.
type Message struct {
	Name      string
	Signature string
	Types     []*Interface
}

// Interface is the immutable, versioned description of a protocol
// interface: its name, version, and ordered method/event tables.
type Interface struct {
	Name    string
	Version uint32
	Methods []Message
	Events  []Message
}

// ParsedSignature is a signature string broken into per-argument type
// codes with nullability flags, in wire order.
type ParsedSignature []sigArg

type sigArg struct {
	Kind     ArgType
	Nullable bool
}

// ParseSignature decodes a signature string such as "?sun" into its
// per-argument type codes. A leading '?' on an argument marks it
// nullable and applies to the single type code that follows it.
func ParseSignature(sig string) ParsedSignature {
	out := make(ParsedSignature, 0, len(sig))
	nullable := false
	for i := 0; i < len(sig); i++ {
		c := sig[i]
		if c == '?' {
			nullable = true
			continue
		}
		out = append(out, sigArg{Kind: ArgType(c), Nullable: nullable})
		nullable = false
	}
	return out
}

// Count returns the number of arguments in the signature.
func (p ParsedSignature) Count() int { return len(p) }

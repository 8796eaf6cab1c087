// Package formula parses declarative form documents ("formulas") into a
// typed element tree. A formula is an ordered mapping of element names to
// element definitions; `$`-prefixed keys such as `$type`, `$default`,
// `$values`, `$minItems`, `$maxItems` and `$prototype` are builder directives
// while every other key names a child element.
//
// The builder resolves `$type` once into a Kind so consumers switch over a
// closed set of variants. Unknown types fall back to a text input instead of
// failing; the only fatal schema error is an edit-group without a
// `$prototype`. Elements are addressed by Path values such as
// `person.computers.1.brand`; prototype elements carry the Placeholder segment
// at the row position (`person.computers.$.brand`).
package formula

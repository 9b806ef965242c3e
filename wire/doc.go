// Package wire implements the ShareDB wire protocol's message schema
// and codec: the short field names (a/c/d/v/src/seq/id) mandated for
// wire compatibility, and decoding of each frame shape keyed by the
// "a" (action) discriminator. See SPEC_FULL.md §4.3.
package wire

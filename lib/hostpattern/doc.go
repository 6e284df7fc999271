// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

// Package hostpattern expands compact host patterns into concrete
// hostname lists.
//
// A pattern is literal text interleaved with brace groups. A group is
// either a comma alternation or an integer range:
//
//	web{01..16}              web01, web02, ..., web16
//	{cache,db}.internal      cache.internal, db.internal
//	{a,b}serv{1,2}           aserv1, aserv2, bserv1, bserv2
//
// Adjacent groups compose as a cross product in left-to-right order,
// with the leftmost group varying slowest. Range endpoints with leading
// zeros produce zero-padded output at the wider endpoint's width.
//
// Expansion is pure string work: no network access, no deduplication
// (a pattern that names a host twice yields two entries), and a fully
// materialized result. The output order is deterministic for a given
// pattern but is only a dispatch order; nothing downstream preserves it.
package hostpattern

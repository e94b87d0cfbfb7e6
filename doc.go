// Package folio derives positions, valuations and performance metrics from a
// raw portfolio event log.
//
// The core is a pure calculation engine: buy, sell, dividend, bonus, deposit
// and withdrawal events are replayed through a FIFO lot queue to decompose
// gains into realized and unrealized components, extract dividend income, and
// annualize both time-weighted and money-weighted (XIRR-style) returns for an
// arbitrary symbol or the whole portfolio over an arbitrary date range.
//
// The engine performs no I/O and holds no state between calls. Persistence of
// raw events, valuation snapshots and currency conversion are external
// collaborators; the cache subpackage provides the TTL/singleflight envelope
// under which the expensive derivations are invoked.
package folio

// Package collector drives paginated fetching and owns the record sequence.
//
// Collection is two nested loops. The inner loop walks offsets 0, PageSize,
// 2*PageSize, ... appending every page to the sequence until an empty page
// (end of dataset), the record cap, or a persistently failing offset ends the
// pass. The outer loop restarts the whole pass after a long cooldown, but only
// while nothing has been accumulated; one record is enough to commit to a pass.
//
// The accumulated sequence preserves fetch order. Downstream sharding and
// index construction both key off position in this sequence, so it is never
// reordered or filtered here.
package collector

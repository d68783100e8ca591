// Package ledger implements the cross-process stack ledger shared by every
// running creak instance. It persists the visible notifications, prunes
// expired and orphaned entries, hands out stacking offsets and releases them
// again when a notification goes away.
package ledger

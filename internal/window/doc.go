// Package window owns the window registry for labwind.
// It creates windows through a Primitive, deduplicates singleton labels,
// numbers multi-instance labels, delivers an initial payload once the window
// content signals readiness, and prunes the registry when windows are destroyed.
package window

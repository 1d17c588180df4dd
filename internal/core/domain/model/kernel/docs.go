// Package kernel holds shared domain primitives: identifier helpers and
// the money value object used across aggregates.
package kernel

// Package services implements the driving port interfaces.
// The Synchroniser contains the core rebuild logic and orchestrates
// calls to driven ports (adapters).
package services

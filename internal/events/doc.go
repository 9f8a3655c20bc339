// Package events carries view changes to whoever renders them.
//
// View state and sessions emit a ViewEvent whenever the observed candidate
// changes; a renderer registers an EventHandler with an EventEmitter and
// reacts without the emitting side knowing who listens.
package events

// Package alarm contains core domain types for the gas alarm business logic.
//
// It defines State (the logical detector reading), EventKind and Event (a
// notification produced by a qualifying transition) and the message rendering
// helper shared by every delivery channel.
package alarm

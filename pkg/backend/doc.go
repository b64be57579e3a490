// Package backend defines the contract between the router and the
// hardware-specific backends it multiplexes, plus a registry that opens
// connections by target string ("<id>://?k=v").
package backend

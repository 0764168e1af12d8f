// Package production holds the integrations a host wires around running
// trees: tick publishing, snapshot persistence, Redis blackboard mirroring
// and Graphviz export.
package production

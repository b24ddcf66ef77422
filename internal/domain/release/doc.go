// Package release holds the pure naming rules of a Leggio release and the
// stages a single packaging run goes through.
//
// Nothing here touches the filesystem or the network.
package release

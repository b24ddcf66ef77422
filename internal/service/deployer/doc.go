// Package deployer uploads the versioned artifact to the download host with
// an external remote-copy program (scp by default) and announces its public URL.
//
// The URL is printed only after the copy program exited successfully.
package deployer

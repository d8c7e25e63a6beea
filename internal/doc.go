// Package internal contains the framework core: the request and
// response models, the declarative route table, the authorization
// gate, and the dispatch kernel that ties them together. The root
// fastraven package re-exports the public surface.
package internal

// Package apply holds the commands that write to clusters from flags or
// files: put-template, create-index, put-doc and bulk.
package apply

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Result strings reported per written object
const (
	resultAcknowledged    = "acknowledged"
	resultNotAcknowledged = "not acknowledged"
	resultCreated         = "created"
	resultRecreated       = "recreated"
)

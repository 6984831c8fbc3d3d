//go:build tools

// Package presence_chat pins the code generators run by go generate
// (mockgen for the mocks/ package) so their version lives in go.mod.
package presence_chat

import (
	_ "go.uber.org/mock/mockgen"
)

//go:build tools
// +build tools

// Package tools pins the code generators used by go:generate (mockgen for the mocks package)
// so that go.mod tracks them.
package chat_memory

import (
	_ "go.uber.org/mock/mockgen"
)

package types

import "unsafe"

// uintptr_of returns a stable-within-process integer identity for a
// TypeInfo pointer, used only by ResolvedType.Hash to fold pointer identity
// into a hash value. Never compared across processes or persisted.
func uintptr_of(t *TypeInfo) uintptr {
	return uintptr(unsafe.Pointer(t))
}

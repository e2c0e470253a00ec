// Package snapshot persists the serialized procurement store. Every backend
// keeps exactly one payload and overwrites it on save.
package snapshot

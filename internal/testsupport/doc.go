// Package testsupport builds throwaway logging configurations for tests.
package testsupport

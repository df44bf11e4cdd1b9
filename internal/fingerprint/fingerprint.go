// Package fingerprint derives a stack-trace identity for failure chains.
//
// Two failures are considered similar when their fingerprints are equal.
// Messages never take part in the computation, so failures that differ only
// in instance-specific text (ids, paths, timestamps) collapse onto one
// ticket. Distinct failures may collide; that is accepted.
package fingerprint

import (
	"errors"
	"unicode/utf16"

	"github.com/danielolaszy/jiralog/pkg/models"
)

const (
	frameMultiplier = 31
	causeMultiplier = 37
)

// ErrNoFailureChain is returned when a fingerprint is requested for an
// absent chain. It indicates a caller bug.
var ErrNoFailureChain = errors.New("fingerprint: failure chain must not be nil")

// Compute returns the fingerprint of chain. Frames are folded in order with
// multiplier 31, then the cause's fingerprint is folded in with multiplier 37.
func Compute(chain *models.FailureChain) (int32, error) {
	if chain == nil {
		return 0, ErrNoFailureChain
	}
	return compute(chain, 0), nil
}

// MustCompute is like Compute but panics on a nil chain.
func MustCompute(chain *models.FailureChain) int32 {
	fp, err := Compute(chain)
	if err != nil {
		panic(err)
	}
	return fp
}

func compute(chain *models.FailureChain, depth int) int32 {
	var acc int32
	for _, f := range chain.Frames {
		acc = acc*frameMultiplier + frameHash(f)
	}
	if chain.Cause != nil && depth+1 < models.MaxCauseDepth {
		acc = acc*causeMultiplier + compute(chain.Cause, depth+1)
	}
	return acc
}

// frameHash covers unit, operation and line. Location is not part of a
// frame's identity.
func frameHash(f *models.Frame) int32 {
	if f == nil {
		return 0
	}
	h := 31*stringHash(f.Unit) + stringHash(f.Operation)
	return 31*h + int32(f.Line)
}

// stringHash is s[0]*31^(n-1) + ... + s[n-1] over UTF-16 code units.
func stringHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}

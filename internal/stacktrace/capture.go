package stacktrace

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/danielolaszy/jiralog/pkg/models"
)

// stackTracer is implemented by errors created or wrapped with
// github.com/pkg/errors.
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Capture builds a failure chain from a Go error. The outermost error is
// always the head of the chain. Further down the Unwrap chain, every error
// that carries its own stack trace becomes a linked cause. Errors without
// any stack produce a frameless chain.
func Capture(err error) *models.FailureChain {
	if err == nil {
		return nil
	}

	head := link(err)
	cur := head
	depth := 0
	for next := unwrap(err); next != nil; next = unwrap(next) {
		st, ok := next.(stackTracer)
		if !ok {
			continue
		}
		if sameStack(cur, st.StackTrace()) {
			continue
		}
		if depth+1 >= models.MaxCauseDepth {
			break
		}
		cause := link(next)
		cur.Cause = cause
		cur = cause
		depth++
	}
	return head
}

func link(err error) *models.FailureChain {
	c := &models.FailureChain{
		Kind:    kindOf(err),
		Message: err.Error(),
	}
	if st, ok := err.(stackTracer); ok {
		c.Frames = convert(st.StackTrace())
	}
	return c
}

// unwrap follows the first branch of joined errors.
func unwrap(err error) error {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := u.Unwrap(); len(errs) > 0 {
			return errs[0]
		}
		return nil
	}
	return errors.Unwrap(err)
}

// sameStack reports whether st repeats the frames already recorded on c.
// errors.Wrap on an error that already has a stack re-captures the same
// call path.
func sameStack(c *models.FailureChain, st pkgerrors.StackTrace) bool {
	frames := convert(st)
	if len(frames) != len(c.Frames) || len(frames) == 0 {
		return false
	}
	for i := range frames {
		a, b := frames[i], c.Frames[i]
		if a == nil || b == nil {
			if a != b {
				return false
			}
			continue
		}
		if *a != *b {
			return false
		}
	}
	return true
}

func convert(st pkgerrors.StackTrace) []*models.Frame {
	if len(st) == 0 {
		return nil
	}
	pcs := make([]uintptr, len(st))
	for i, f := range st {
		pcs[i] = uintptr(f)
	}

	frames := make([]*models.Frame, 0, len(st))
	it := runtime.CallersFrames(pcs)
	for {
		rf, more := it.Next()
		if rf.Function == "" {
			frames = append(frames, nil)
		} else {
			unit, op := splitSymbol(rf.Function)
			frames = append(frames, &models.Frame{
				Unit:      unit,
				Operation: op,
				Location:  filepath.Base(rf.File),
				Line:      rf.Line,
			})
		}
		if !more {
			break
		}
	}
	return frames
}

// kindOf names the error type. pkg/errors wrapper types say nothing about
// the failure and are left blank.
func kindOf(err error) string {
	kind := fmt.Sprintf("%T", err)
	if strings.HasPrefix(kind, "*errors.") {
		return ""
	}
	return kind
}

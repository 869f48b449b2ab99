package stream

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Fragments is a lazy, single-use sequence of text fragments produced by a
// model connector. A non-nil error ends the sequence.
type Fragments = iter.Seq2[string, error]

// CollectError reports a producer failure after Received fragments had been
// accumulated. The partial text is not kept.
type CollectError struct {
	Received int
	Err      error
}

func (e *CollectError) Error() string {
	return fmt.Sprintf("stream failed after %d fragments: %v", e.Received, e.Err)
}

func (e *CollectError) Unwrap() error { return e.Err }

// Collector accumulates fragments in arrival order.
type Collector struct {
	buf       strings.Builder
	fragments int
}

// Append adds one fragment. Zero-length fragments are ignored and reported
// as not appended.
func (c *Collector) Append(fragment string) bool {
	if fragment == "" {
		return false
	}
	c.buf.WriteString(fragment)
	c.fragments++
	return true
}

// Fragments returns the number of non-empty fragments appended so far.
func (c *Collector) Fragments() int { return c.fragments }

// Text returns everything appended so far.
func (c *Collector) Text() string { return c.buf.String() }

// Reset discards the accumulated text.
func (c *Collector) Reset() {
	c.buf.Reset()
	c.fragments = 0
}

// Collect drains fragments and returns their concatenation once the producer
// finishes. onFragment, when non-nil, sees every non-empty fragment right
// after it is appended.
//
// On producer failure or context cancellation the accumulated text is
// discarded and an error is returned; a caller never receives truncated text
// that could look like a complete generation.
func Collect(ctx context.Context, fragments Fragments, onFragment func(string)) (string, error) {
	var c Collector
	for fragment, err := range fragments {
		if err != nil {
			received := c.Fragments()
			c.Reset()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", err
			}
			return "", &CollectError{Received: received, Err: err}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.Reset()
			return "", ctxErr
		}
		if c.Append(fragment) && onFragment != nil {
			onFragment(fragment)
		}
	}
	// The producer may stop quietly when its own context is cancelled.
	if ctxErr := ctx.Err(); ctxErr != nil {
		c.Reset()
		return "", ctxErr
	}
	return c.Text(), nil
}

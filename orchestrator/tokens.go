package orchestrator

import (
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the token cost of a string. The orchestrator uses
// it for the total-token termination condition and the compaction
// threshold check; neither needs provider-exact counts, just a consistent
// estimate across a single run.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter wraps pkoukk/tiktoken-go's cl100k_base encoding, the
// encoding shared by the Anthropic- and OpenAI-compatible chat models this
// core drives. Encoding construction is lazy and cached: the BPE table
// load is expensive enough that building it once per Loop, not per Count
// call, matters.
type TiktokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

func (c *TiktokenCounter) init() {
	c.enc, c.err = tiktoken.GetEncoding("cl100k_base")
}

// Count returns the token length of text, falling back to a whitespace
// word-count estimate if the encoding failed to load (offline environments
// without the tiktoken-go vocab cache available).
func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(c.init)
	if c.err != nil || c.enc == nil {
		return len(strings.Fields(text))
	}
	return len(c.enc.Encode(text, nil, nil))
}

// NewTiktokenCounter returns a TokenCounter backed by TiktokenCounter.
func NewTiktokenCounter() TokenCounter { return &TiktokenCounter{} }

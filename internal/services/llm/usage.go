package llm

import "sync/atomic"

// Usage summarizes the traffic a client has generated.
type Usage struct {
	Requests         int64
	Retries          int64
	PromptTokens     int64
	CompletionTokens int64
}

type usageCounter struct {
	requests         atomic.Int64
	retries          atomic.Int64
	promptTokens     atomic.Int64
	completionTokens atomic.Int64
}

func (u *usageCounter) request() { u.requests.Add(1) }

func (u *usageCounter) retry() { u.retries.Add(1) }

func (u *usageCounter) tokens(prompt, completion int) {
	u.promptTokens.Add(int64(prompt))
	u.completionTokens.Add(int64(completion))
}

// Usage returns a snapshot of request, retry, and token counters.
func (c *Client) Usage() Usage {
	return Usage{
		Requests:         c.usage.requests.Load(),
		Retries:          c.usage.retries.Load(),
		PromptTokens:     c.usage.promptTokens.Load(),
		CompletionTokens: c.usage.completionTokens.Load(),
	}
}

// Package llm provides the language model capability for the agent
// loop. It wraps gollm to present a small conversation-in, response-out
// interface and adds the accounting the loop's limit checks depend on:
// a monotonic call counter and a cumulative dollar cost derived from
// token usage and the model pricing catalog.
//
// A Client is safe for concurrent use and may be shared between agent
// runs; each run only reads the counters.
//
//	client, err := llm.NewClient("anthropic", "claude-sonnet-4-5", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := client.Query(ctx, messages)
package llm

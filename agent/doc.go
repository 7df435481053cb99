// Package agent implements an autonomous shell-task execution loop.
//
// The agent repeatedly asks a language model for a single shell action,
// runs that action through an execution environment, and feeds the result
// back into the conversation until the model signals completion or a
// configured limit is reached.
//
// # Architecture
//
// The package is organized around these core concepts:
//
//   - Agent: The loop orchestrator. Owns the conversation log and the
//     run configuration, drives query -> parse -> execute -> observe.
//   - Model: Capability interface for the language model. Accepts the
//     conversation, returns a response, tracks call count and cost.
//   - Environment: Capability interface for command execution. Runs a
//     shell command and returns raw output plus metadata.
//   - Outcome: Tagged result of a step. Recoverable outcomes (format
//     errors, execution timeouts) are fed back to the model as corrective
//     messages; terminal outcomes (submission, limits) end the run.
//   - Detector: Pluggable charset detection used to normalize byte
//     output into text before it reaches the conversation.
//
// # Quick Start
//
//	model, _ := llm.NewClient("anthropic", "claude-sonnet-4-5", "")
//	env := environment.NewLocal("/path/to/workdir", 30*time.Second)
//	ag := agent.New(model, env, nil)
//
//	status, message, err := ag.Run(ctx, "list all files", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s: %s\n", status, message)
package agent

// Package trace records what a build did and how long each part took.
//
// A build opens one span per stage (decode, collect, passes, layout, lower,
// write). Inside a stage each rewrite pass or per-target lowering is a step,
// and the contracts produced by a step are reported as units. Events raised
// while a target is being lowered carry that target's name.
//
//	flintc build --trace=- --trace-level=step Bank.yaml
//
// Sinks: a Stream writes every event as it arrives; a Ring keeps the most
// recent events so they can be dumped after an internal fault.
//
//	ctx, span := trace.Start(ctx, trace.ScopeStep, "pass:left-associate")
//	defer span.End("")
package trace

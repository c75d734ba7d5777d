/*
Package session implements session management and persistence orchestration.

A Manager serializes the turns of each conversation: the merge-then-decide
sequence of a dialogue turn is not safe under interleaving, so every turn of a
session runs under a per-session mutex, optionally backed by a distributed lock
when several replicas share a store. Different sessions proceed in parallel.

Idle conversations are evicted by Sweep, usually driven by RunJanitor.
*/
package session

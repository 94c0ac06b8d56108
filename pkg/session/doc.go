/*
Package session serializes access to conversation state.

A Manager pairs a ports.StateStore with a per-session mutex, so one session
handles one input at a time while different sessions run in parallel. With
a ports.DistributedLocker the guarantee extends across replicas sharing the
store.
*/
package session

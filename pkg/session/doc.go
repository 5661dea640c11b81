/*
Package session orchestrates persistent walks.

A Manager pairs a dialogue tree with a state store so conversations survive
process restarts: each step loads the walk state, advances a walker, and
saves the result under a per-session lock. An optional distributed locker
extends that exclusivity across replicas sharing one store.
*/
package session

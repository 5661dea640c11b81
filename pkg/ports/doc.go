/*
Package ports defines the driven ports (interfaces) for the convo toolkit.

These interfaces decouple the core model from external implementations,
letting the session layer and front-ends work against interchangeable tree
sources and persistence backends.

# Key Interfaces

  - TreeSource: loads a dialogue tree from somewhere (file, memory, ...).
  - Watchable: notifies when a source's underlying data changes.
  - StateStore: persists walk state between steps and across processes.
  - Locker: distributed locking for sessions shared across replicas.
*/
package ports

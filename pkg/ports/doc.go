/*
Package ports defines the driven ports (interfaces) of the scenery engine.

These interfaces decouple the dialogue core from its collaborators and
storage backends.

# Key Interfaces

  - TextMatcher: decides whether a reply satisfies an exact or keyword rule.
  - MediaService: checks, converts and resizes media files for content posts.
  - GraphStore: persists compiled graphs.
  - StateStore: persists per-session State.
  - DistributedLocker: serializes access to a session across replicas.
*/
package ports

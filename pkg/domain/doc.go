/*
Package domain contains the core model of the scenery dialogue engine.

It defines the conversation graph and the resolver that walks it. The package
is kept pure: it performs no I/O, and the only collaborator it calls is the
Matcher handed to Post.Next.

# Key Entities

  - Graph: owner of all posts, the root post and the platform credential.
  - Post: content plus ordered rules; Post.Next is the flow resolver.
  - Condition / Rule: Immediate, Exact, Keyword, Else and Button predicates.
  - Content: closed set of payload variants (text, media, buttons, groups).
  - State: per-session position and consumed buttons.
*/
package domain

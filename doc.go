/*
Package scenery runs scripted conversational bots.

A bot script is a directed graph of posts. Each post carries one piece of
content (text, media, a button panel or an album) and an ordered list of
rules leading to other posts. Given the post a session waits on and the
latest user input, the engine picks the first rule that resolves and sends
the target post, followed by every post reachable through unconditional
rules.

# Concept

The graph is built once and shared read-only by all sessions. Everything a
session owns (its current post, history and the buttons it already pressed)
lives in a domain.State persisted through a ports.StateStore. This keeps
the engine embeddable in any transport: a terminal, an HTTP API or an MCP
server.

# Usage

	g := domain.NewGraph(token)
	hello, _ := g.NewPost("hello", domain.Text{Body: "Hi! Ready?"})
	yes, _ := g.NewPost("yes", domain.Text{Body: "Let's go."})
	again, _ := g.NewPost("again", domain.Text{Body: "Say yes when ready."})
	_ = hello.AddNext(yes, domain.Exact("yes"))
	_ = hello.AddNext(again, domain.Else())
	_ = again.AddNext(hello, domain.Immediate())

	bot := scenery.New(g)
	posts, _ := bot.Start(ctx, "chat-42")
	posts, _ = bot.Handle(ctx, "chat-42", domain.TextInput("yes"))

Content with files should be built with pkg/content, which checks the files
and converts voice and audio payloads. Graphs are usually described in a
YAML manifest (pkg/manifest) and compiled to bin/obj.bin with the scenery
command.
*/
package scenery

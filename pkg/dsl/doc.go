/*
Package dsl provides a fluent builder for conversation graphs.

Posts are declared by id and rules refer to their targets by id, so a script
can be written top to bottom with forward references and loops. Everything
is resolved by Build, which reports every problem at once.

Example usage:

	b := dsl.New(token)

	b.Add("start", domain.Text{Body: "Welcome!"}).
		Go("ask")

	b.Add("ask", domain.Text{Body: "Ready?"}).
		Exact("yes", "menu").
		Keyword("bye", "end").
		Else("ask")

	b.Add("menu", panel).
		Button("Left", "end").
		Button("Right", "end")

	b.Add("end", domain.Text{Body: "Bye"})

	graph, err := b.Build()
*/
package dsl

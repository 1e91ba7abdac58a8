/*
Package dsl provides a fluent Go builder for constructing dialogue scripts
programmatically.

It lets hosts define branching dialogue in type-checked Go instead of script
files, which is useful for generated content, unit tests, and IDE
autocompletion.

Example usage:

	package main

	import (
		"github.com/aretw0/tendril/pkg/dsl"
	)

	func main() {
		script := dsl.New("intro")

		script.Node("Start").
			Line("A stranger waves you over.").
			Wait("0.5").
			Line("\"Got a minute?\"").
			Option("Sure", "Chat").
			Option("Not now", "Leave")

		script.Node("Chat").
			Set("met_stranger", "true").
			Line("You talk until the lanterns go out.").
			Jump("Leave")

		script.Node("Leave").
			Line("The road stretches on.")

		// The resulting source can be used as a ports.ScriptSource
		source, _ := script.Build()
		// ... pass source to tendril.New with WithSource(source)
	}
*/
package dsl

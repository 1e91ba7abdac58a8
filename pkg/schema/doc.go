// Package schema describes and parses the positional parameters of script
// commands.
//
// A command like <<give sword 2>> reaches the host as the name "give" and
// the raw string parameters ["sword", "2"]. A Spec declares what those
// positions mean and Bind turns them into typed values:
//
//	spec := schema.Spec{
//	    Command: "give",
//	    Params: []schema.Param{
//	        {Name: "item", Type: schema.String()},
//	        {Name: "count", Type: schema.Int(), Optional: true},
//	    },
//	}
//
//	args, err := spec.Bind([]string{"sword", "2"})
//	// args.String(0) == "sword", args.Int(1) == 2
//
// Specs can also be parsed from type strings ("item:string", "count:int"),
// which is how configuration-driven command tables declare them. Custom
// types plug in domain-specific parsing.
//
// The package has no dependencies beyond the standard library; it is the
// shared contract between the command registry, the process adapter, and
// any host that validates script commands.
package schema

// Package schema describes capability input contracts and validates raw
// arguments against them.
//
// # Contracts
//
// A contract is a Shape: argument name to field description. Fields are
// required unless marked Optional:
//
//	shape := schema.Shape{
//	    "topic": schema.String().Describe("The topic to summarize"),
//	    "tone":  schema.Enum("formal", "casual", "technical").Optional(),
//	}
//
// Shapes can also be reflected from Go structs with Reflect, which reads the
// json and jsonschema struct tags.
//
// # Validation
//
// Validator is the narrow interface the server uses. DefaultValidator decodes
// the raw JSON, checks every field, and either returns the validated argument
// set or an Issues error listing each failing field:
//
//	args, err := schema.DefaultValidator.Validate(shape, raw)
//	var issues schema.Issues
//	if errors.As(err, &issues) {
//	    for _, issue := range issues {
//	        fmt.Println(issue.Path, issue.Message)
//	    }
//	}
package schema

package errors

// Error codes.
const (
	E101 = "E101"
	E102 = "E102"
	E103 = "E103"

	E201 = "E201"
	E202 = "E202"

	E301 = "E301"
	E302 = "E302"

	E401 = "E401"
	E402 = "E402"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	Example    string
}

const actionsExample = `actions := func(model *Greeter) comp.Actions[Greeter] {
    return comp.Actions[Greeter]{
        "sayHello": func(args ...any) comp.Result[Greeter] {
            model.Greeting = "Hi."
            return comp.Immediate[Greeter]()
        },
        "greet": func(args ...any) comp.Result[Greeter] {
            model.Greeting = fmt.Sprintf("Hello, %v", args[0])
            return comp.Immediate[Greeter]()
        },
    }
}`

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Usage errors (E101-E199)
	E101: {
		Category:   CategoryUsage,
		Message:    "Your component needs a name",
		Suggestion: "Pass a non-empty name to comp.Create; it is used to find the host container and to look the component up in the registry.",
	},
	E102: {
		Category:   CategoryUsage,
		Message:    "Component needs some actions",
		Suggestion: "Pass an actions factory: a function that takes the model and returns a map of named action functions.",
		Example:    actionsExample,
	},
	E103: {
		Category:   CategoryUsage,
		Message:    "Unknown action",
		Suggestion: "Check the action name against the map returned by the component's actions factory.",
	},

	// Contract errors (E201-E299)
	E201: {
		Category:   CategoryContract,
		Message:    "You must provide a valid node to update",
		Suggestion: "Synchronize needs a live node obtained from the tree adapter, attached to a document or container.",
	},
	E202: {
		Category: CategoryContract,
		Message:  "Markup could not be parsed into a tree",
	},

	// Render errors (E301-E399)
	E301: {
		Category: CategoryRender,
		Message:  "Render failed",
	},
	E302: {
		Category:   CategoryRender,
		Message:    "No model received - aborting render",
		Suggestion: "A pending action must resolve to a non-nil model. Handle failures inside the action and resolve with the current model.",
	},

	// Config errors (E401-E499)
	E401: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	E402: {
		Category:   CategoryConfig,
		Message:    "Configuration file could not be read",
		Suggestion: "Create comp.json or comp.yaml, or pass --config with the path to one.",
	},
}

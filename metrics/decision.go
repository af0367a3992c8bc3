package metrics

// decisionKinds lists the node kinds counted as decision points for
// cyclomatic complexity, per language.
var decisionKinds = map[string]map[string]bool{
	"python": {
		"if_statement":           true,
		"elif_clause":            true,
		"for_statement":          true,
		"while_statement":        true,
		"with_statement":         true,
		"try_statement":          true,
		"except_clause":          true,
		"match_statement":        true,
		"case_clause":            true,
		"conditional_expression": true,
		"lambda":                 true,
	},
	"java": {
		"if_statement":           true,
		"else_clause":            true,
		"for_statement":          true,
		"while_statement":        true,
		"do_statement":           true,
		"switch_expression":      true,
		"switch_statement":       true,
		"catch_clause":           true,
		"conditional_expression": true,
		"lambda_expression":      true,
		"method_reference":       true,
	},
}

// definitionKinds lists the class/function definition kinds per language.
// Broken-node detection stops at these so a damaged nested definition is
// reported on its own block, not its parents.
var definitionKinds = map[string]map[string]bool{
	"python": {
		"class_definition":    true,
		"function_definition": true,
	},
	"java": {
		"class_declaration":       true,
		"method_declaration":      true,
		"constructor_declaration": true,
	},
}

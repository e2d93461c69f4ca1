package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Binary expressions

## Test: +
` + fence + `pascal-expr
1 + 2
` + fence + `
` + fence + `ast
(binary "+" 1 2)
` + fence + `

## Test: -
` + fence + `pascal-expr
1 - 2
` + fence + `
` + fence + `ast
(binary "-" 1 2)
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "+")
	be.Equal(t, tc1.Input, "1 + 2")
	be.Equal(t, tc1.InputType, InputTypePascalExpr)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc1.Assertions[0].Content, `(binary "+" 1 2)`)
	be.Equal(t, tc1.Assertions[0].ParsedSexy.String(), `(binary "+" 1 2)`)

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "-")
	be.Equal(t, tc2.Input, "1 - 2")
	be.Equal(t, tc2.Assertions[0].ParsedSexy.String(), `(binary "-" 1 2)`)
}

func TestExtractTestCases_AllAssertionTypes(t *testing.T) {
	markdown := `## Test: everything
` + fence + `pascal-program
program p;
var x: integer;
begin
  x := y
end.
` + fence + `
` + fence + `ast
(program "p" ...)
` + fence + `
` + fence + `diagnostics
error name-undefined 5:8
warning unused-variable 2:5
note 2:5
` + fence + `
` + fence + `execute
x = 0
` + fence + `
` + fence + `pretty
program p;
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, tc.InputType, InputTypePascalProgram)
	be.Equal(t, tc.Input, "program p;\nvar x: integer;\nbegin\n  x := y\nend.")
	be.Equal(t, len(tc.Assertions), 4)

	be.Equal(t, tc.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeDiagnostics)
	be.Equal(t, tc.Assertions[1].Diagnostics, []ExpectedDiagnostic{
		{Severity: "error", Kind: "name-undefined", Line: 5, Col: 8},
		{Severity: "warning", Kind: "unused-variable", Line: 2, Col: 5},
		{Severity: "note", Line: 2, Col: 5},
	})
	be.Equal(t, tc.Assertions[2].Type, AssertionTypeExecute)
	be.Equal(t, tc.Assertions[2].Content, "x = 0")
	be.True(t, tc.Assertions[2].ParsedSexy == nil)
	be.Equal(t, tc.Assertions[3].Type, AssertionTypePretty)
}

func TestExtractTestCases_EmptyDiagnosticsFence(t *testing.T) {
	markdown := `## Test: clean
` + fence + `pascal-program
program p; begin end.
` + fence + `
` + fence + `diagnostics
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases[0].Assertions), 1)
	be.Equal(t, len(testCases[0].Assertions[0].Diagnostics), 0)
}

func TestExtractTestCases_EmptyFile(t *testing.T) {
	testCases, err := ExtractTestCases("")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_NoTestCases(t *testing.T) {
	markdown := `# Just a document

Some prose, and a heading that is not a test.

## Notes
`
	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_InvalidSexyAssertion(t *testing.T) {
	markdown := `## Test: invalid sexy
` + fence + `pascal-expr
1 + 2
` + fence + `
` + fence + `ast
(unclosed list
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "failed to parse Sexy assertion")
	be.Err(t, err, "line 6")
}

func TestExtractTestCases_InvalidDiagnosticsAssertion(t *testing.T) {
	tests := []string{
		"error name-undefined",
		"error name-undefined 3",
		"error name-undefined x:1",
		"fatal name-undefined 1:1",
		"note",
	}

	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			markdown := "## Test: bad\n" + fence + "pascal-expr\n1\n" + fence + "\n" +
				fence + "diagnostics\n" + line + "\n" + fence
			_, err := ExtractTestCases(markdown)
			be.Err(t, err, "failed to parse diagnostics assertion")
		})
	}
}

func TestExtractTestCases_FenceOutsideTestCase(t *testing.T) {
	tests := []struct {
		name      string
		markdown  string
		fenceType string
	}{
		{"pascal-expr", "# Document\n\n```pascal-expr\n1 + 2\n```\n", "pascal-expr"},
		{"pascal-program", "# Document\n\n```pascal-program\nprogram p; begin end.\n```\n", "pascal-program"},
		{"ast", "# Document\n\n```ast\n(binary \"+\" 1 2)\n```\n", "ast"},
		{"diagnostics", "# Document\n\n```diagnostics\nerror name-undefined 1:1\n```\n", "diagnostics"},
		{"execute", "# Document\n\n```execute\nx = 1\n```\n", "execute"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ExtractTestCases(test.markdown)
			be.Err(t, err, test.fenceType+" fence found outside of test case")
			be.Err(t, err, "line 4")
		})
	}
}

func TestExtractTestCases_UnknownFenceLanguageInTest(t *testing.T) {
	markdown := `## Test: with unknown fence
` + fence + `python
print("hello")
` + fence + `
` + fence + `pascal-expr
1 + 2
` + fence + `
` + fence + `ast
(binary "+" 1 2)
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "unknown fence language 'python'")
	be.Err(t, err, "line")
}

func TestExtractTestCases_TestMissingInputFence(t *testing.T) {
	markdown := `## Test: no input
` + fence + `ast
(binary "+" 1 2)
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "test 'no input' has no input fence")
}

func TestExtractTestCases_TestMissingAssertionFence(t *testing.T) {
	markdown := `## Test: no assertions
` + fence + `pascal-expr
1 + 2
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "test 'no assertions' has no assertion fences")
}

func TestExtractTestCases_MultipleInputFences(t *testing.T) {
	markdown := `## Test: multiple inputs
` + fence + `pascal-expr
1 + 2
` + fence + `
` + fence + `pascal-expr
3 + 4
` + fence + `
` + fence + `ast
(binary "+" 1 2)
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "multiple input fences found")
}

func TestExtractTestCases_UnknownFenceOutsideTest(t *testing.T) {
	markdown := "# Document with unknown code block\n\n```go\nfunc main() {}\n```"

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "unknown fence language 'go' found outside of test case")
}

func TestExtractTestCases_AllowFencesWithoutLanguage(t *testing.T) {
	markdown := `# Document with generic code block

` + fence + `
some code without language
` + fence + `

## Test: valid test
` + fence + `pascal-expr
1 + 2
` + fence + `
` + fence + `ast
(binary "+" 1 2)
` + fence + `

` + fence + `
more code without language in test
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, testCases[0].Name, "valid test")
	be.Equal(t, len(testCases[0].Assertions), 1)
}

func TestExtractTestCases_ErrorInSecondTest(t *testing.T) {
	markdown := `## Test: first test
` + fence + `pascal-expr
1 + 2
` + fence + `
` + fence + `ast
(binary "+" 1 2)
` + fence + `

## Test: second test missing input
` + fence + `ast
(binary "-" 1 2)
` + fence

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "test 'second test missing input' has no input fence")
}

func TestExtractTestCases_MultilineSexy(t *testing.T) {
	markdown := `## Test: complex expression
` + fence + `pascal-expr
x + yyy * 2
` + fence + `
` + fence + `ast
(binary "+"
 (var "x")
 (binary "*"
  (var "yyy")
  2))
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)

	parsed := testCases[0].Assertions[0].ParsedSexy
	be.Equal(t, parsed.Type, NodeList)
	be.Equal(t, len(parsed.Items), 4)
	be.Equal(t, parsed.Items[0].Text, "binary")
	be.Equal(t, parsed.Items[1].Type, NodeString)
	be.Equal(t, parsed.String(), `(binary "+" (var "x") (binary "*" (var "yyy") 2))`)
}

func TestExpectedDiagnosticString(t *testing.T) {
	be.Equal(t, ExpectedDiagnostic{Severity: "error", Kind: "name-undefined", Line: 3, Col: 5}.String(), "error name-undefined 3:5")
	be.Equal(t, ExpectedDiagnostic{Severity: "note", Line: 1, Col: 2}.String(), "note 1:2")
}

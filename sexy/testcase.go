package sexy

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType represents the type of input code fence in a Sexy test
type InputType string

const (
	InputTypePascalExpr    InputType = "pascal-expr"
	InputTypePascalProgram InputType = "pascal-program"
)

// AssertionType represents the type of assertion code fence in a Sexy test
type AssertionType string

const (
	AssertionTypeAST         AssertionType = "ast"
	AssertionTypeDiagnostics AssertionType = "diagnostics"
	AssertionTypeExecute     AssertionType = "execute"
	AssertionTypePretty      AssertionType = "pretty"
)

// ExpectedDiagnostic is one line of a diagnostics fence:
// "severity kind line:col", for example "error name-undefined 3:5".
// Notes have no kind and are written "note line:col".
type ExpectedDiagnostic struct {
	Severity string
	Kind     string
	Line     int
	Col      int
}

func (d ExpectedDiagnostic) String() string {
	if d.Kind == "" {
		return fmt.Sprintf("%s %d:%d", d.Severity, d.Line, d.Col)
	}
	return fmt.Sprintf("%s %s %d:%d", d.Severity, d.Kind, d.Line, d.Col)
}

// Assertion represents a single assertion in a Sexy test
type Assertion struct {
	Type       AssertionType // The type of assertion (ast, diagnostics, execute, pretty)
	Content    string        // The raw content of the assertion code fence
	ParsedSexy *Node         // The parsed pattern of an ast assertion
	// Diagnostics holds the parsed lines of a diagnostics assertion. An
	// empty fence expects no diagnostics at all.
	Diagnostics []ExpectedDiagnostic
}

// TestCase represents a complete Sexy test case extracted from Markdown
type TestCase struct {
	Name       string      // The test name from the heading (after "Test: ")
	Input      string      // The raw input code from the input fence
	InputType  InputType   // The type of input fence (pascal-expr, pascal-program)
	Assertions []Assertion // All assertions for this test case
}

// ExtractTestCases parses a Markdown document and extracts all Sexy test cases
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	md := goldmark.New()
	source := []byte(markdownContent)

	// Parse the markdown document
	doc := md.Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var currentTestCase *TestCase

	// Walk through all nodes in the document
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			if strings.HasPrefix(headingText, "Test: ") {
				// Validate the previous test case before saving it
				if currentTestCase != nil {
					if err := validateTestCase(currentTestCase); err != nil {
						return ast.WalkStop, err
					}
					testCases = append(testCases, *currentTestCase)
				}

				currentTestCase = &TestCase{
					Name:       strings.TrimPrefix(headingText, "Test: "),
					Assertions: []Assertion{},
				}
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			content := extractCodeBlockContent(n, source)
			lineNum := getLineNumber(n, source)

			// Only allow Sexy fences inside test cases
			if currentTestCase == nil {
				if language == "" {
					return ast.WalkContinue, nil
				}
				if isInputFence(language) || isAssertionFence(language) {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", lineNum, language)
				}
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' found outside of test case", lineNum, language)
			}

			switch {
			case language == "":
				return ast.WalkContinue, nil
			case isInputFence(language):
				if currentTestCase.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences found in test '%s'", lineNum, currentTestCase.Name)
				}
				currentTestCase.Input = strings.TrimRight(content, "\n")
				currentTestCase.InputType = InputType(language)
			case isAssertionFence(language):
				assertion, err := parseAssertion(AssertionType(language), content)
				if err != nil {
					return ast.WalkStop, fmt.Errorf("line %d: %w in test '%s'", lineNum, err, currentTestCase.Name)
				}
				currentTestCase.Assertions = append(currentTestCase.Assertions, assertion)
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", lineNum, language, currentTestCase.Name)
			}
		}

		return ast.WalkContinue, nil
	})

	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}

	// Validate and save the last test case
	if currentTestCase != nil {
		if err := validateTestCase(currentTestCase); err != nil {
			return nil, err
		}
		testCases = append(testCases, *currentTestCase)
	}

	return testCases, nil
}

func parseAssertion(typ AssertionType, content string) (Assertion, error) {
	assertion := Assertion{
		Type:    typ,
		Content: strings.TrimRight(content, "\n"),
	}
	switch typ {
	case AssertionTypeAST:
		parsed, err := Parse(assertion.Content)
		if err != nil {
			return Assertion{}, fmt.Errorf("failed to parse Sexy assertion: %w", err)
		}
		assertion.ParsedSexy = parsed
	case AssertionTypeDiagnostics:
		diags, err := ParseDiagnostics(assertion.Content)
		if err != nil {
			return Assertion{}, fmt.Errorf("failed to parse diagnostics assertion: %w", err)
		}
		assertion.Diagnostics = diags
	}
	return assertion, nil
}

// ParseDiagnostics reads the lines of a diagnostics fence. Blank lines
// are skipped.
func ParseDiagnostics(content string) ([]ExpectedDiagnostic, error) {
	var diags []ExpectedDiagnostic
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var d ExpectedDiagnostic
		var location string
		switch {
		case len(fields) == 2 && fields[0] == "note":
			d.Severity, location = fields[0], fields[1]
		case len(fields) == 3 && (fields[0] == "error" || fields[0] == "warning"):
			d.Severity, d.Kind, location = fields[0], fields[1], fields[2]
		default:
			return nil, fmt.Errorf("malformed diagnostic %q", line)
		}

		lineText, colText, ok := strings.Cut(location, ":")
		if !ok {
			return nil, fmt.Errorf("malformed location %q", location)
		}
		var err error
		if d.Line, err = strconv.Atoi(lineText); err != nil {
			return nil, fmt.Errorf("malformed location %q", location)
		}
		if d.Col, err = strconv.Atoi(colText); err != nil {
			return nil, fmt.Errorf("malformed location %q", location)
		}
		diags = append(diags, d)
	}
	return diags, nil
}

// extractTextFromNode extracts plain text content from a markdown node
func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer

	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if text, ok := n.(*ast.Text); ok {
				buf.Write(text.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}

// extractCodeBlockContent extracts the content from a fenced code block
func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer

	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}

	return buf.String()
}

func isInputFence(language string) bool {
	switch InputType(language) {
	case InputTypePascalExpr, InputTypePascalProgram:
		return true
	}
	return false
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionTypeAST, AssertionTypeDiagnostics, AssertionTypeExecute, AssertionTypePretty:
		return true
	}
	return false
}

// validateTestCase ensures a test case has both input and at least one assertion
func validateTestCase(testCase *TestCase) error {
	if testCase.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", testCase.Name)
	}
	if len(testCase.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", testCase.Name)
	}
	return nil
}

// getLineNumber calculates the line number of a given AST node
func getLineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	// Count newlines before the node's start position
	startPos := node.Lines().At(0).Start
	lineNum := 1
	for i := 0; i < startPos && i < len(source); i++ {
		if source[i] == '\n' {
			lineNum++
		}
	}
	return lineNum
}

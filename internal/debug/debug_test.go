package debug

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/phillarmonic/paramflow/internal/condition"
	"github.com/phillarmonic/paramflow/internal/types"
)

func TestTokens(t *testing.T) {
	tokens := Tokens("env == 'prod'")
	if len(tokens) != 4 {
		t.Fatalf("Expected 4 tokens, got %d: %+v", len(tokens), tokens)
	}
	if tokens[0].Literal != "env" || tokens[0].Position != 0 {
		t.Errorf("Unexpected first token: %+v", tokens[0])
	}
	if tokens[2].Literal != "prod" || tokens[2].Position != 7 {
		t.Errorf("Unexpected string token: %+v", tokens[2])
	}
}

func TestDebugFull(t *testing.T) {
	var buf bytes.Buffer
	expr, err := DebugFull(&buf, "env == 'prod' && tier in ['a', 'b']")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if expr == nil {
		t.Fatal("Expected parsed expression")
	}

	out := buf.String()
	for _, want := range []string{
		"=== LEXER DEBUG ===",
		"=== AST DEBUG ===",
		"Logical &&",
		"  Comparison env == 'prod' (string)",
		"  Membership tier in ['a', 'b']",
		"References: env, tier",
		"=== AST JSON ===",
		`"type": "membership"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestDebugFull_ParseError(t *testing.T) {
	var buf bytes.Buffer
	_, err := DebugFull(&buf, "env ==")
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if !strings.Contains(buf.String(), "env ==\n      ^") {
		t.Errorf("Expected caret pointer, got:\n%s", buf.String())
	}
}

func TestTree(t *testing.T) {
	expr := condition.MustParse("replicas == 2 || debug == true")
	data, err := json.Marshal(Tree(expr))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := `{"left":{"name":"replicas","op":"==","type":"comparison","value":2},"op":"||","right":{"name":"debug","op":"==","type":"comparison","value":true},"type":"logical"}`
	if string(data) != expected {
		t.Errorf("Unexpected JSON:\n got %s\nwant %s", data, expected)
	}
}

func TestDebugEval(t *testing.T) {
	expr := condition.MustParse("env == 'prod' && confirm == true")
	env, _ := types.NewValue(types.ChoiceType, "prod")

	var buf bytes.Buffer
	DebugEval(&buf, expr, condition.Context{Values: types.Values{"env": env}})
	if !strings.Contains(buf.String(), "=> undecidable") {
		t.Errorf("Expected undecidable outcome, got:\n%s", buf.String())
	}

	buf.Reset()
	DebugEval(&buf, expr, condition.Context{
		Values:  types.Values{"env": env},
		Settled: map[string]bool{"confirm": true},
	})
	if !strings.Contains(buf.String(), "=> false") {
		t.Errorf("Expected false outcome, got:\n%s", buf.String())
	}
}

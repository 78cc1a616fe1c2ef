package template

import "testing"

const validTemplate = `{
  "name": "demo",
  "columns": [
    {"id": "surface", "type": "surface3d"},
    {"id": "risk", "type": "riskpanel", "options": {"window": "20"}}
  ],
  "wiring": [
    {"on": {"column": "surface", "event": "SELECTED"},
     "do": {"column": "risk", "action": "SET_DATA"}}
  ]
}`

func TestParseValidTemplate(t *testing.T) {
	tpl, err := Parse([]byte(validTemplate))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tpl.Name != "demo" || len(tpl.Columns) != 2 || len(tpl.Wiring) != 1 {
		t.Fatalf("unexpected template: %+v", tpl)
	}
	if got := tpl.ColumnIDs(); len(got) != 2 || got[0] != "surface" || got[1] != "risk" {
		t.Fatalf("ColumnIDs=%v", got)
	}
}

func TestValidateRejectsDuplicateColumnID(t *testing.T) {
	_, err := Parse([]byte(`{"name":"x","columns":[{"id":"a","type":"t"},{"id":"a","type":"t"}]}`))
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestValidateRejectsDanglingWiringSource(t *testing.T) {
	_, err := Parse([]byte(`{
		"name": "x",
		"columns": [{"id":"a","type":"t"}],
		"wiring": [{"on":{"column":"missing","event":"SELECTED"},"do":{"column":"a","action":"SET_DATA"}}]
	}`))
	if err == nil {
		t.Fatal("expected dangling source error")
	}
}

func TestValidateRejectsDanglingWiringTarget(t *testing.T) {
	_, err := Parse([]byte(`{
		"name": "x",
		"columns": [{"id":"a","type":"t"}],
		"wiring": [{"on":{"column":"a","event":"SELECTED"},"do":{"column":"missing","action":"SET_DATA"}}]
	}`))
	if err == nil {
		t.Fatal("expected dangling target error")
	}
}

func TestValidateAllowsWildcardTarget(t *testing.T) {
	_, err := Parse([]byte(`{
		"name": "x",
		"columns": [{"id":"a","type":"t"}],
		"wiring": [{"on":{"column":"a","event":"SELECTED"},"do":{"column":"*","action":"SET_DATA"}}]
	}`))
	if err != nil {
		t.Fatalf("wildcard target should be valid: %v", err)
	}
}

func TestWorkerSpecsAndWiringRulesFromTemplate(t *testing.T) {
	tpl, err := Parse([]byte(validTemplate))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	specs := tpl.WorkerSpecs("/usr/bin/marigraph", "worker")
	if len(specs) != 2 || specs[0].ID != "surface" || specs[1].Options["window"] != "20" {
		t.Fatalf("unexpected specs: %+v", specs)
	}

	rules := tpl.WiringRules()
	if len(rules) != 1 || rules[0].Source != "surface" || rules[0].EventName != "SELECTED" ||
		rules[0].Target != "risk" || rules[0].ActionName != "SET_DATA" {
		t.Fatalf("unexpected rules: %+v", rules)
	}
}

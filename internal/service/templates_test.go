package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"meterhub/internal/apperrors"
	"meterhub/internal/models"
)

func templateFixture() (*TemplateService, *fakeTemplateStore) {
	templates := newFakeTemplateStore()
	tx := &fakeTxRunner{stores: Stores{Templates: templates}}
	return NewTemplateService(tx, nil, zap.NewNop()), templates
}

func constVar(label, value string) models.Variable {
	return models.Variable{
		Kind:  models.VariableConstant,
		Label: label,
		Value: decimal.RequireFromString(value),
	}
}

func TestCreateDefinitionStoresExpression(t *testing.T) {
	svc, templates := templateFixture()

	def := &models.FormulaDefinition{
		TemplateID: 7,
		Name:       "delta",
		Expression: "today - yesterday",
		Variables: []models.Variable{
			{Kind: models.VariableReading, Label: "today", ReadingTypeID: 1},
			{Kind: models.VariableReading, Label: "yesterday", ReadingTypeID: 1, TimeShift: 1},
		},
	}
	if err := svc.CreateDefinition(context.Background(), def); err != nil {
		t.Fatalf("create: %v", err)
	}
	if def.ID == 0 {
		t.Fatalf("definition should get an id")
	}
	stored, err := templates.DefinitionByID(context.Background(), def.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.Expression != "today - yesterday" {
		t.Fatalf("expression not stored, got %q", stored.Expression)
	}
}

func TestCreateDefinitionCompilesItems(t *testing.T) {
	svc, templates := templateFixture()

	def := &models.FormulaDefinition{
		TemplateID: 7,
		Name:       "scaled",
		Items: []models.FormulaItem{
			{Kind: models.ItemVariable, Value: "level"},
			{Kind: models.ItemOperator, Value: "*"},
			{Kind: models.ItemConstant, Value: "2.5"},
		},
		Variables: []models.Variable{
			{Kind: models.VariableReading, Label: "level", ReadingTypeID: 3},
		},
	}
	if err := svc.CreateDefinition(context.Background(), def); err != nil {
		t.Fatalf("create: %v", err)
	}
	stored, _ := templates.DefinitionByID(context.Background(), def.ID)
	if stored.Expression == "" {
		t.Fatalf("items should compile into an expression")
	}
}

func TestCreateDefinitionRejectsUndeclaredVariable(t *testing.T) {
	svc, _ := templateFixture()

	def := &models.FormulaDefinition{
		TemplateID: 7,
		Name:       "bad",
		Expression: "a + b",
		Variables:  []models.Variable{constVar("a", "1")},
	}
	err := svc.CreateDefinition(context.Background(), def)
	if !apperrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), `"b"`) {
		t.Fatalf("error should name the undeclared variable, got %q", err.Error())
	}
}

func TestCreateDefinitionRejectsDuplicateLabel(t *testing.T) {
	svc, _ := templateFixture()

	def := &models.FormulaDefinition{
		TemplateID: 7,
		Name:       "dup",
		Expression: "a + 1",
		Variables:  []models.Variable{constVar("a", "1"), constVar("a", "2")},
	}
	if err := svc.CreateDefinition(context.Background(), def); !apperrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCreateDefinitionRejectsBadExpression(t *testing.T) {
	svc, _ := templateFixture()

	def := &models.FormulaDefinition{
		TemplateID: 7,
		Name:       "broken",
		Expression: "a + + b",
		Variables:  []models.Variable{constVar("a", "1"), constVar("b", "2")},
	}
	if err := svc.CreateDefinition(context.Background(), def); !apperrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCreateMainDefinitionDemotesPrevious(t *testing.T) {
	svc, templates := templateFixture()

	first := &models.FormulaDefinition{
		TemplateID: 7,
		Name:       "first",
		IsMain:     true,
		Expression: "a",
		Variables:  []models.Variable{constVar("a", "1")},
	}
	second := &models.FormulaDefinition{
		TemplateID: 7,
		Name:       "second",
		IsMain:     true,
		Expression: "b",
		Variables:  []models.Variable{constVar("b", "2")},
	}
	if err := svc.CreateDefinition(context.Background(), first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := svc.CreateDefinition(context.Background(), second); err != nil {
		t.Fatalf("create second: %v", err)
	}

	if n := templates.mainCount(7); n != 1 {
		t.Fatalf("expected exactly one main definition, got %d", n)
	}
	stored, _ := templates.DefinitionByID(context.Background(), second.ID)
	if !stored.IsMain {
		t.Fatalf("latest created main should hold the flag")
	}
}

func TestSetMainDefinitionKeepsSingleMain(t *testing.T) {
	svc, templates := templateFixture()

	ids := make([]int64, 0, 3)
	for _, name := range []string{"one", "two", "three"} {
		def := &models.FormulaDefinition{
			TemplateID: 7,
			Name:       name,
			Expression: "x",
			Variables:  []models.Variable{constVar("x", "1")},
		}
		if err := svc.CreateDefinition(context.Background(), def); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		ids = append(ids, def.ID)
	}

	for _, id := range ids {
		if err := svc.SetMainDefinition(context.Background(), id); err != nil {
			t.Fatalf("set main %d: %v", id, err)
		}
		if n := templates.mainCount(7); n != 1 {
			t.Fatalf("after promoting %d expected one main, got %d", id, n)
		}
	}

	stored, _ := templates.DefinitionByID(context.Background(), ids[len(ids)-1])
	if !stored.IsMain {
		t.Fatalf("last promoted definition should be main")
	}
}

func TestSetMainDefinitionUnknownID(t *testing.T) {
	svc, _ := templateFixture()

	err := svc.SetMainDefinition(context.Background(), 404)
	if !apperrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error for unknown definition, got %v", err)
	}
}

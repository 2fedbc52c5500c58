package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"meterhub/internal/models"
)

// ErrDefinitionNotFound indicates an unknown formula definition id.
var ErrDefinitionNotFound = errors.New("formula definition not found")

// TemplateRepository persists calculation templates and formula definitions.
type TemplateRepository struct {
	db DBTX
}

// NewTemplateRepository returns repository.
func NewTemplateRepository(db DBTX) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// TemplateByID loads a template with its definitions in sort order.
func (r *TemplateRepository) TemplateByID(ctx context.Context, id int64) (*models.CalculationTemplate, error) {
	const query = `
		SELECT id, name, created_at, updated_at
		FROM calculation_templates
		WHERE id = $1
	`
	var t models.CalculationTemplate
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if t.Definitions, err = r.definitions(ctx, t.ID); err != nil {
		return nil, err
	}
	return &t, nil
}

// DefinitionByID loads a single formula definition.
func (r *TemplateRepository) DefinitionByID(ctx context.Context, id int64) (*models.FormulaDefinition, error) {
	const query = `
		SELECT id, template_id, name, is_main, expression, variables, sort_order
		FROM formula_definitions
		WHERE id = $1
	`
	var (
		def     models.FormulaDefinition
		varsRaw []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&def.ID,
		&def.TemplateID,
		&def.Name,
		&def.IsMain,
		&def.Expression,
		&varsRaw,
		&def.SortOrder,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDefinitionNotFound
	}
	if err != nil {
		return nil, err
	}
	if def.Variables, err = models.DecodeVariables(varsRaw); err != nil {
		return nil, fmt.Errorf("definition %d: decode variables: %w", def.ID, err)
	}
	return &def, nil
}

// CreateDefinition inserts a formula definition.
func (r *TemplateRepository) CreateDefinition(ctx context.Context, def *models.FormulaDefinition) error {
	varsRaw, err := json.Marshal(def.Variables)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO formula_definitions (template_id, name, is_main, expression, variables, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		def.TemplateID,
		def.Name,
		def.IsMain,
		def.Expression,
		varsRaw,
		def.SortOrder,
	).Scan(&def.ID)
}

// DemoteMain clears the main flag on every definition of a template except one.
func (r *TemplateRepository) DemoteMain(ctx context.Context, templateID, exceptID int64) error {
	const query = `
		UPDATE formula_definitions
		SET is_main = false
		WHERE template_id = $1 AND id <> $2 AND is_main
	`
	_, err := r.db.ExecContext(ctx, query, templateID, exceptID)
	return err
}

// PromoteMain sets the main flag on one definition.
func (r *TemplateRepository) PromoteMain(ctx context.Context, definitionID int64) error {
	const query = `
		UPDATE formula_definitions
		SET is_main = true
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, definitionID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDefinitionNotFound
	}
	return nil
}

// MeterCodesForTemplate lists meters assigned to a template, for cache invalidation.
func (r *TemplateRepository) MeterCodesForTemplate(ctx context.Context, templateID int64) ([]string, error) {
	const query = `
		SELECT code FROM meters WHERE calculation_template_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *TemplateRepository) definitions(ctx context.Context, templateID int64) ([]models.FormulaDefinition, error) {
	const query = `
		SELECT id, template_id, name, is_main, expression, variables, sort_order
		FROM formula_definitions
		WHERE template_id = $1
		ORDER BY sort_order, id
	`
	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []models.FormulaDefinition
	for rows.Next() {
		var (
			def     models.FormulaDefinition
			varsRaw []byte
		)
		if err := rows.Scan(
			&def.ID,
			&def.TemplateID,
			&def.Name,
			&def.IsMain,
			&def.Expression,
			&varsRaw,
			&def.SortOrder,
		); err != nil {
			return nil, err
		}
		if def.Variables, err = models.DecodeVariables(varsRaw); err != nil {
			return nil, fmt.Errorf("definition %d: decode variables: %w", def.ID, err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return defs, nil
}

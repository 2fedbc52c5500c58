package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"meterhub/internal/apperrors"
	"meterhub/internal/formula"
	"meterhub/internal/models"
	"meterhub/internal/repository"
)

// ContextInvalidator drops cached meter contexts after configuration writes.
type ContextInvalidator interface {
	Invalidate(ctx context.Context, meterCode string)
}

// TemplateService handles formula definition authoring. The expression /
// variable cross-check lives here so evaluation never sees an undeclared
// identifier.
type TemplateService struct {
	tx     TxRunner
	cache  ContextInvalidator
	logger *zap.Logger
}

// NewTemplateService builds service. cache may be nil.
func NewTemplateService(tx TxRunner, cache ContextInvalidator, logger *zap.Logger) *TemplateService {
	return &TemplateService{tx: tx, cache: cache, logger: logger}
}

// CreateDefinition validates and stores a formula definition. Definitions
// authored as primitive item lists are compiled into an expression first.
// Creating a definition as main demotes the template's previous main.
func (s *TemplateService) CreateDefinition(ctx context.Context, def *models.FormulaDefinition) error {
	if def.Name == "" {
		return apperrors.NewConfiguration("formula definition requires a name")
	}

	if def.Expression == "" {
		if len(def.Items) == 0 {
			return apperrors.NewConfiguration("formula %q: expression or items required", def.Name)
		}
		expr, err := formula.CompileItems(def.Items)
		if err != nil {
			return apperrors.NewConfiguration("formula %q: %v", def.Name, err)
		}
		def.Expression = expr
	}

	if err := checkDeclaredVariables(def); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(stores Stores) error {
		if err := stores.Templates.CreateDefinition(ctx, def); err != nil {
			return err
		}
		if def.IsMain {
			return stores.Templates.DemoteMain(ctx, def.TemplateID, def.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateTemplate(ctx, def.TemplateID)
	s.logger.Info("formula definition created",
		zap.Int64("template_id", def.TemplateID),
		zap.String("name", def.Name),
		zap.Bool("is_main", def.IsMain),
	)
	return nil
}

// SetMainDefinition promotes a definition to main and demotes the previous
// main of the same template in one transaction, so at most one main exists
// at any point in time.
func (s *TemplateService) SetMainDefinition(ctx context.Context, definitionID int64) error {
	var templateID int64
	err := s.tx.WithinTx(ctx, func(stores Stores) error {
		def, err := stores.Templates.DefinitionByID(ctx, definitionID)
		if errors.Is(err, repository.ErrDefinitionNotFound) {
			return apperrors.NewConfiguration("formula definition %d not found", definitionID)
		}
		if err != nil {
			return err
		}
		templateID = def.TemplateID
		if err := stores.Templates.PromoteMain(ctx, def.ID); err != nil {
			return err
		}
		return stores.Templates.DemoteMain(ctx, def.TemplateID, def.ID)
	})
	if err != nil {
		return err
	}

	s.invalidateTemplate(ctx, templateID)
	s.logger.Info("main formula definition changed",
		zap.Int64("template_id", templateID),
		zap.Int64("definition_id", definitionID),
	)
	return nil
}

// checkDeclaredVariables enforces the authoring-time invariant: every
// identifier in the expression appears as a declared variable label.
func checkDeclaredVariables(def *models.FormulaDefinition) error {
	expr, err := formula.Parse(def.Expression)
	if err != nil {
		return apperrors.NewConfiguration("formula %q: %v", def.Name, err)
	}

	declared := make(map[string]bool, len(def.Variables))
	for _, v := range def.Variables {
		if declared[v.Label] {
			return apperrors.NewConfiguration("formula %q: duplicate variable label %q", def.Name, v.Label)
		}
		declared[v.Label] = true
	}
	for _, ident := range expr.Idents() {
		if !declared[ident] {
			return apperrors.NewConfiguration("formula %q references undeclared variable %q", def.Name, ident)
		}
	}
	return nil
}

func (s *TemplateService) invalidateTemplate(ctx context.Context, templateID int64) {
	if s.cache == nil {
		return
	}
	err := s.tx.WithinTx(ctx, func(stores Stores) error {
		codes, err := stores.Templates.MeterCodesForTemplate(ctx, templateID)
		if err != nil {
			return err
		}
		for _, code := range codes {
			s.cache.Invalidate(ctx, code)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to invalidate meter context cache", zap.Int64("template_id", templateID), zap.Error(err))
	}
}

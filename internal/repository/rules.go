package repository

import (
	"context"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/internal/entity"
	"github.com/joseph-ayodele/doc-extractor/internal/rules"
)

type RuleRepository interface {
	SaveSet(ctx context.Context, name, source string, rs []rules.Rule) (*entity.RuleSet, error)
	// GetSet returns the set with its rules in their original order.
	GetSet(ctx context.Context, id uuid.UUID) (*entity.RuleSet, error)
	LatestSet(ctx context.Context) (*entity.RuleSet, error)
	// ListSets returns every set, newest first, without rules.
	ListSets(ctx context.Context) ([]*entity.RuleSet, error)
}

type ruleRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewRuleRepository(db *DB, logger *slog.Logger) RuleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ruleRepo{db: db, logger: logger}
}

func (r *ruleRepo) SaveSet(ctx context.Context, name, source string, rs []rules.Rule) (*entity.RuleSet, error) {
	set := &entity.RuleSet{
		ID:        uuid.New(),
		Name:      name,
		Source:    source,
		CreatedAt: now(),
		Rules:     rules.Records(rs),
	}
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		b := r.db.builder()
		ins := b.Insert(tableRuleSets).Columns("id", "name", "source", "created_at").
			Values(set.ID, set.Name, set.Source, set.CreatedAt)
		if _, err := execute(ctx, tx, ins); err != nil {
			return dbError("insert rule set", err)
		}
		if len(set.Rules) == 0 {
			return nil
		}
		rins := b.Insert(tableRules).Columns("id", "rule_set_id", "position", "field_name", "extraction_type",
			"search_pattern", "context_before", "context_after", "instructions")
		for i, rec := range set.Rules {
			rins.Values(uuid.New(), set.ID, i, rec.FieldName, rec.ExtractionType,
				rec.SearchPattern, rec.ContextBefore, rec.ContextAfter, rec.Instructions)
		}
		if _, err := execute(ctx, tx, rins); err != nil {
			return dbError("insert rules", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to save rule set", "name", name, "error", err)
		return nil, err
	}
	r.logger.Info("rule set saved", "rule_set_id", set.ID, "name", name, "rules", len(set.Rules))
	return set, nil
}

func (r *ruleRepo) GetSet(ctx context.Context, id uuid.UUID) (*entity.RuleSet, error) {
	sets, err := r.sets(ctx, func(s *entsql.Selector) { s.Where(entsql.EQ("id", id)) })
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, notFound("rule set", id.String())
	}
	return r.withRules(ctx, sets[0])
}

func (r *ruleRepo) LatestSet(ctx context.Context) (*entity.RuleSet, error) {
	sets, err := r.sets(ctx, func(s *entsql.Selector) {
		s.OrderBy(entsql.Desc("created_at")).Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, notFound("rule set", "latest")
	}
	return r.withRules(ctx, sets[0])
}

func (r *ruleRepo) ListSets(ctx context.Context) ([]*entity.RuleSet, error) {
	return r.sets(ctx, func(s *entsql.Selector) {
		s.OrderBy(entsql.Desc("created_at"), entsql.Asc("name"))
	})
}

func (r *ruleRepo) sets(ctx context.Context, where func(*entsql.Selector)) ([]*entity.RuleSet, error) {
	b := r.db.builder()
	s := b.Select("id", "name", "source", "created_at").From(b.Table(tableRuleSets))
	where(s)
	rows, err := queryRows(ctx, r.db.drv, s)
	if err != nil {
		return nil, dbError("query rule sets", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.RuleSet
	for rows.Next() {
		var set entity.RuleSet
		if err := rows.Scan(&set.ID, &set.Name, &set.Source, &set.CreatedAt); err != nil {
			return nil, dbError("scan rule set", err)
		}
		set.CreatedAt = set.CreatedAt.UTC()
		out = append(out, &set)
	}
	return out, dbError("iterate rule sets", rows.Err())
}

func (r *ruleRepo) withRules(ctx context.Context, set *entity.RuleSet) (*entity.RuleSet, error) {
	b := r.db.builder()
	s := b.Select("field_name", "extraction_type", "search_pattern", "context_before", "context_after", "instructions").
		From(b.Table(tableRules)).
		Where(entsql.EQ("rule_set_id", set.ID)).
		OrderBy(entsql.Asc("position"))
	rows, err := queryRows(ctx, r.db.drv, s)
	if err != nil {
		return nil, dbError("query rules", err)
	}
	defer func() { _ = rows.Close() }()

	set.Rules = set.Rules[:0]
	for rows.Next() {
		var rec rules.Record
		if err := rows.Scan(&rec.FieldName, &rec.ExtractionType, &rec.SearchPattern,
			&rec.ContextBefore, &rec.ContextAfter, &rec.Instructions); err != nil {
			return nil, dbError("scan rule", err)
		}
		set.Rules = append(set.Rules, rec)
	}
	return set, dbError("iterate rules", rows.Err())
}

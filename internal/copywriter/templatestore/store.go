// internal/copywriter/templatestore/store.go
package templatestore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"betfunnels-copy/internal/common/database"
	"betfunnels-copy/internal/common/errors"
	"betfunnels-copy/internal/common/logger"
	"betfunnels-copy/internal/models"
)

const (
	masterGuideQuery = `SELECT conteudo FROM master_prompts WHERE ativo = true ORDER BY atualizado_em DESC LIMIT 1`
	searchQuery      = `SELECT nome_casino FROM casino_prompts WHERE nome_casino ILIKE $1 ESCAPE '\' ORDER BY nome_casino ASC LIMIT $2`
)

// Store reads prompt data. Nothing is cached: every call hits the database so
// edits to templates apply to the next request.
type Store struct {
	db           database.Querier
	keys         []string
	selectCasino string
	listCasinos  string
	logger       logger.Logger
}

// NewStore expects referenceKeys to be validated identifiers; they are used
// as column names.
func NewStore(db database.Querier, referenceKeys []string, log logger.Logger) *Store {
	columns := append([]string{"nome_casino", "tom_de_voz", "instrucoes"}, referenceKeys...)
	selectList := strings.Join(columns, ", ")

	return &Store{
		db:           db,
		keys:         append([]string(nil), referenceKeys...),
		selectCasino: fmt.Sprintf("SELECT %s FROM casino_prompts WHERE nome_casino = $1 LIMIT 1", selectList),
		listCasinos:  fmt.Sprintf("SELECT %s FROM casino_prompts ORDER BY nome_casino ASC", selectList),
		logger:       log,
	}
}

// MasterGuide returns the active master style guide.
func (s *Store) MasterGuide(ctx context.Context) (string, error) {
	var content sql.NullString
	err := s.db.QueryRowContext(ctx, masterGuideQuery).Scan(&content)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", errors.NewConfigurationError("no active master prompt")
	}
	if err != nil {
		return "", errors.NewStoreError(fmt.Errorf("master prompt: %w", err))
	}
	if strings.TrimSpace(content.String) == "" {
		return "", errors.NewConfigurationError("active master prompt is empty")
	}
	return content.String, nil
}

// Casino looks the name up exactly, then by normalized key over every
// stored casino. The first normalized match wins.
func (s *Store) Casino(ctx context.Context, name string) (*models.CasinoRecord, error) {
	rec, err := s.scanRecord(s.db.QueryRowContext(ctx, s.selectCasino, name))
	if err == nil {
		return rec, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewStoreError(fmt.Errorf("casino %q: %w", name, err))
	}

	all, err := s.ListCasinos(ctx)
	if err != nil {
		return nil, err
	}

	tried := Candidates(name)
	for i := range all {
		if matches(tried, Candidates(all[i].Name)) {
			s.logger.Info("casino matched by normalized name", map[string]interface{}{
				"requested": name,
				"matched":   all[i].Name,
			})
			return &all[i], nil
		}
	}

	available := make([]string, 0, len(all))
	for _, c := range all {
		if strings.TrimSpace(c.Name) != "" {
			available = append(available, c.Name)
		}
	}
	return nil, errors.NewCasinoNotFoundError(name, tried, available)
}

func (s *Store) ListCasinos(ctx context.Context) ([]models.CasinoRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.listCasinos)
	if err != nil {
		return nil, errors.NewStoreError(fmt.Errorf("list casinos: %w", err))
	}
	defer rows.Close()

	var out []models.CasinoRecord
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, errors.NewStoreError(fmt.Errorf("scan casino: %w", err))
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError(fmt.Errorf("list casinos: %w", err))
	}
	return out, nil
}

// SearchCasinoNames is a case-insensitive substring search for the
// autocomplete. A blank query returns an empty list without querying.
func (s *Store) SearchCasinoNames(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}

	rows, err := s.db.QueryContext(ctx, searchQuery, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, errors.NewStoreError(fmt.Errorf("search casinos: %w", err))
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewStoreError(fmt.Errorf("scan casino name: %w", err))
		}
		if strings.TrimSpace(name.String) != "" {
			names = append(names, name.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError(fmt.Errorf("search casinos: %w", err))
	}
	return names, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanRecord(row scanner) (*models.CasinoRecord, error) {
	values := make([]sql.NullString, 3+len(s.keys))
	dest := make([]interface{}, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	rec := &models.CasinoRecord{
		Name:            values[0].String,
		Tone:            values[1].String,
		Instructions:    values[2].String,
		ReferencesByKey: make(map[string]string, len(s.keys)),
	}
	for i, key := range s.keys {
		rec.ReferencesByKey[key] = values[3+i].String
	}
	return rec, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

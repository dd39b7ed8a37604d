package repository

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/oneview/kpi-dashboard-api/infrastructure/database/postgres"
	"github.com/oneview/kpi-dashboard-api/internal/domain"
	"github.com/oneview/kpi-dashboard-api/pkg/utils"
)

const kpiHistoryTable = "kpi_history"

// KpiHistoryRepository persiste as métricas-chave de cada snapshot para
// consulta histórica. A escrita é best-effort: falha aqui nunca invalida o
// snapshot já publicado no cache.
type KpiHistoryRepository interface {
	SaveSnapshot(snapshot *domain.KpiSnapshot) error
	ListRecent(limit int) ([]*domain.KpiHistoryEntry, error)
}

type kpiHistoryRepository struct {
	conn *postgres.Connection
}

func NewKpiHistoryRepository(conn *postgres.Connection) KpiHistoryRepository {
	return &kpiHistoryRepository{
		conn: conn,
	}
}

func (r *kpiHistoryRepository) SaveSnapshot(snapshot *domain.KpiSnapshot) error {
	if snapshot == nil {
		return nil
	}

	id, err := utils.GenerateID()
	if err != nil {
		return fmt.Errorf("erro ao gerar o ID do registro: %w", err)
	}

	metricsJSON, err := json.Marshal(snapshot.KeyMetrics)
	if err != nil {
		return fmt.Errorf("erro ao serializar as métricas: %w", err)
	}

	query, args, err := squirrel.
		Insert(kpiHistoryTable).
		Columns("id", "snapshot_id", "key_metrics", "created_at").
		Values(id, snapshot.ID, metricsJSON, snapshot.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.DB.Exec(query, args...)
	return err
}

func (r *kpiHistoryRepository) ListRecent(limit int) ([]*domain.KpiHistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := squirrel.
		Select("id", "snapshot_id", "key_metrics", "created_at").
		From(kpiHistoryTable).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.KpiHistoryEntry, 0)
	for rows.Next() {
		entry := &domain.KpiHistoryEntry{}
		var metricsJSON []byte

		if err := rows.Scan(&entry.ID, &entry.SnapshotID, &metricsJSON, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear registro: %w", err)
		}

		if err := json.Unmarshal(metricsJSON, &entry.KeyMetrics); err != nil {
			return nil, fmt.Errorf("erro ao desserializar as métricas: %w", err)
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

package domain

import "time"

// KpiHistoryEntry é uma linha do histórico de snapshots persistido para
// auditoria. Não é cache: o snapshot servido vive só em memória.
type KpiHistoryEntry struct {
	ID         string     `json:"id"`
	SnapshotID string     `json:"snapshot_id"`
	KeyMetrics KeyMetrics `json:"key_metrics"`
	CreatedAt  time.Time  `json:"created_at"`
}

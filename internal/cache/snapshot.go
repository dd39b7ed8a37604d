package cache

import (
	"sync"
	"time"

	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

// SnapshotCache guarda o snapshot de KPIs mais recente com TTL curto.
// O cache é in-process e best-effort: existe só para evitar chamadas
// redundantes aos provedores externos dentro da janela do TTL.
//
// O dono exclusivo da entrada é este componente; Put substitui a entrada
// por inteiro e nenhum outro componente a muta diretamente. Os contadores
// de hit/miss não são tocados por Put: a classificação é responsabilidade
// de quem consulta (o agregador), via RecordHit/RecordMiss.
type SnapshotCache struct {
	mu  sync.RWMutex
	ttl time.Duration

	entry           *domain.KpiSnapshot
	lastRefreshedAt time.Time
	hitCount        int64
	missCount       int64

	// now é injetável para os testes de fronteira do TTL
	now func() time.Time
}

// New cria um cache vazio com o TTL informado
func New(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		ttl: ttl,
		now: time.Now,
	}
}

// WithClock substitui a fonte de tempo do cache. Útil apenas em testes.
func (c *SnapshotCache) WithClock(now func() time.Time) *SnapshotCache {
	c.now = now
	return c
}

// Get retorna o snapshot corrente se ele existir e ainda estiver dentro do
// TTL; nil caso contrário. Uma entrada expirada não é removida: ela continua
// disponível via GetStale como fallback se um refresh falhar.
func (c *SnapshotCache) Get() *domain.KpiSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil || c.expired() {
		return nil
	}
	return c.entry
}

// GetStale retorna o snapshot corrente independentemente da idade
func (c *SnapshotCache) GetStale() *domain.KpiSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry
}

// IsExpired informa se a entrada corrente já passou do TTL. Um cache vazio
// é considerado expirado.
func (c *SnapshotCache) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry == nil || c.expired()
}

// expired assume que o lock já está adquirido
func (c *SnapshotCache) expired() bool {
	return c.now().Sub(c.entry.CreatedAt) >= c.ttl
}

// Put substitui a entrada por inteiro. O snapshot mais recente sempre vence:
// um refresh lento nunca sobrescreve um snapshot criado depois dele.
func (c *SnapshotCache) Put(snapshot *domain.KpiSnapshot) {
	if snapshot == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry != nil && c.entry.CreatedAt.After(snapshot.CreatedAt) {
		return
	}

	c.entry = snapshot
	c.lastRefreshedAt = c.now()
}

// Clear esvazia a entrada; Get e GetStale passam a retornar nil
// independentemente da idade da entrada anterior.
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

// RecordHit incrementa o contador de hits
func (c *SnapshotCache) RecordHit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hitCount++
}

// RecordMiss incrementa o contador de misses
func (c *SnapshotCache) RecordMiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missCount++
}

// Stats retorna as estatísticas correntes do cache
func (c *SnapshotCache) Stats() domain.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := domain.CacheStats{
		HasData:    c.entry != nil,
		TTLSeconds: c.ttl.Seconds(),
		HitCount:   c.hitCount,
		MissCount:  c.missCount,
	}

	if c.entry != nil {
		stats.AgeSeconds = c.entry.Age(c.now()).Seconds()
	}

	return stats
}

// TTL retorna o tempo de vida configurado
func (c *SnapshotCache) TTL() time.Duration {
	return c.ttl
}

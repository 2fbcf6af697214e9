package ledgersync

import (
	"context"
	"fmt"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

// LogUseCase consulta la bitácora de sincronización.
type LogUseCase struct {
	repo repository.SyncLogRepository
}

func NewLogUseCase(repo repository.SyncLogRepository) *LogUseCase {
	return &LogUseCase{repo: repo}
}

// Recent últimas entradas, más recientes primero. kind vacío = todos los tipos.
func (uc *LogUseCase) Recent(ctx context.Context, kind entity.PartyKind, limit int) ([]dto.SyncLogResponse, error) {
	entries, err := uc.repo.ListRecent(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("listar bitácora: %w", err)
	}
	out := make([]dto.SyncLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.SyncLogResponse{
			ID:         e.ID,
			EntityType: string(e.EntityType),
			Action:     e.Action,
			Status:     e.Status,
			Processed:  e.Processed,
			Created:    e.Created,
			Updated:    e.Updated,
			Skipped:    e.Skipped,
			Failed:     e.Failed,
			TotalCount: e.TotalCount,
			Message:    e.Message,
			UserID:     e.UserID,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}

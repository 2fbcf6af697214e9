package ledgersync

import (
	"context"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
)

// PageStep ejecuta una página a partir de start y devuelve su cursor.
type PageStep func(ctx context.Context, start int) (dto.PageResult, error)

// Drive invoca step página a página hasta HasMore == false o hasta que ctx se cancele entre
// páginas. Devuelve cuántas páginas se procesaron. Los pipelines nunca iteran por sí mismos.
func Drive(ctx context.Context, start int, step PageStep) (int, error) {
	pages := 0
	for {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		res, err := step(ctx, start)
		if err != nil {
			return pages, err
		}
		pages++
		if !res.HasMore {
			return pages, nil
		}
		start = res.NextStartPosition
	}
}

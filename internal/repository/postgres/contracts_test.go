package postgres

import (
	"github.com/scalara/backend/internal/pipeline"
)

var (
	_ pipeline.CheckpointRepository = (*CheckpointRepository)(nil)
	_ pipeline.LedgerRepository     = (*LedgerRepository)(nil)
	_ pipeline.Locker               = (*AdvisoryLocker)(nil)
)

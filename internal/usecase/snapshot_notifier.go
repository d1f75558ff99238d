package usecase

import (
	"context"
	"time"

	"MarketWatch/internal/domain/models"
	domrepo "MarketWatch/internal/domain/repository"
	"MarketWatch/pkg/logger"

	"github.com/google/uuid"
)

// snapshotNotifier publishes SnapshotEvents. Publishing is best effort:
// failures are logged and never fail the caller.
type snapshotNotifier struct {
	pub domrepo.Publisher
	log *logger.Logger
	now func() time.Time
}

func (n *snapshotNotifier) notify(ctx context.Context, symbol, source string, modules, size int) {
	if n.pub == nil {
		return
	}
	ev := &models.SnapshotEvent{
		ID:      uuid.NewString(),
		Symbol:  symbol,
		Source:  source,
		Modules: modules,
		Bytes:   size,
		At:      n.now().UTC(),
	}
	if err := n.pub.PublishSnapshot(ctx, ev); err != nil {
		n.log.Warn("snapshot event not published",
			logger.String("symbol", symbol),
			logger.String("source", source),
			logger.Error(err),
		)
	}
}

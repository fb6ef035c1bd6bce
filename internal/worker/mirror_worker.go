package worker

import (
	"context"
	"fmt"
	"log/slog"

	"mealbook/internal/amqp"
	"mealbook/internal/core"
	"mealbook/internal/rowstore"
	"mealbook/internal/storage"
)

// MirrorWorker applies expense mutation events to the SQLite reporting
// mirror. Events carry only the id; the worker re-reads the row store, so a
// replayed or reordered event converges on whatever the store holds now.
type MirrorWorker struct {
	store  rowstore.Store
	mirror *storage.MirrorRepository
}

func NewMirrorWorker(store rowstore.Store, mirror *storage.MirrorRepository) *MirrorWorker {
	return &MirrorWorker{store: store, mirror: mirror}
}

// HandleEvent processes one expense event.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	slog.InfoContext(ctx, "Processing expense event",
		"id", msg.ID,
		"action", msg.Action,
		"company", msg.CompanyName)

	if msg.Action == amqp.ActionDelete {
		if err := w.mirror.DeleteExpense(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete mirrored expense: %w", err)
		}
		return nil
	}

	master, shares, err := w.readExpense(ctx, msg.ID)
	if err != nil {
		return err
	}
	if master == nil {
		// Deleted between publish and processing; mirror the deletion.
		slog.WarnContext(ctx, "Expense vanished before mirroring, deleting", "id", msg.ID)
		if err := w.mirror.DeleteExpense(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete vanished expense: %w", err)
		}
		return nil
	}

	if err := w.mirror.UpsertExpense(ctx, *master, shares); err != nil {
		return fmt.Errorf("upsert mirrored expense: %w", err)
	}
	return nil
}

// Resync replays the whole row store into the mirror. Used at startup to
// catch events missed while the worker was down.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	masterRows, err := w.store.Get(ctx, rowstore.TableMasters)
	if err != nil {
		return fmt.Errorf("get masters: %w", err)
	}
	detailRows, err := w.store.Get(ctx, rowstore.TableDetails)
	if err != nil {
		return fmt.Errorf("get details: %w", err)
	}

	byMaster := make(map[string][]core.ExpenseShare)
	for _, row := range detailRows {
		if d, ok := rowstore.DecodeDetail(row); ok {
			byMaster[d.MasterID] = append(byMaster[d.MasterID], d)
		}
	}

	count := 0
	for _, row := range masterRows {
		m, ok := rowstore.DecodeMaster(row)
		if !ok {
			continue
		}
		if err := w.mirror.UpsertExpense(ctx, m, byMaster[m.ID]); err != nil {
			return fmt.Errorf("resync expense %s: %w", m.ID, err)
		}
		count++
	}

	slog.InfoContext(ctx, "Mirror resync complete", "expenses", count)
	return nil
}

func (w *MirrorWorker) readExpense(ctx context.Context, id string) (*core.ExpenseMaster, []core.ExpenseShare, error) {
	masterRows, err := w.store.Get(ctx, rowstore.TableMasters)
	if err != nil {
		return nil, nil, fmt.Errorf("get masters: %w", err)
	}
	var master *core.ExpenseMaster
	for _, row := range masterRows {
		if m, ok := rowstore.DecodeMaster(row); ok && m.ID == id {
			master = &m
			break
		}
	}
	if master == nil {
		return nil, nil, nil
	}

	detailRows, err := w.store.Get(ctx, rowstore.TableDetails)
	if err != nil {
		return nil, nil, fmt.Errorf("get details: %w", err)
	}
	var shares []core.ExpenseShare
	for _, row := range detailRows {
		if d, ok := rowstore.DecodeDetail(row); ok && d.MasterID == id {
			shares = append(shares, d)
		}
	}
	return master, shares, nil
}

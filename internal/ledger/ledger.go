// Package ledger implements the dorm inventory ledger: every change to the
// central store (items.quantity) or to a room allocation (inventory_stock)
// is one database transaction that writes the balances and appends exactly
// one inventory_transactions record.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erazemk/dijaskidom/internal/db"
	"github.com/erazemk/dijaskidom/internal/model"
	"github.com/erazemk/dijaskidom/internal/store"
)

const tracerName = "github.com/erazemk/dijaskidom/internal/ledger"

// RoomDirectory resolves a room to its block and dorm. LookupRoom returns
// nil when the room does not exist.
type RoomDirectory interface {
	LookupRoom(ctx context.Context, roomID int64) (*model.RoomLocation, error)
}

// Recorder observes finished operations.
type Recorder interface {
	ObserveOperation(typ model.TransactionType, outcome string, quantity int)
}

// Publisher receives committed transactions.
type Publisher interface {
	Publish(ctx context.Context, t *model.Transaction) error
}

// Memo is the optional free text attached to a transaction.
type Memo struct {
	Reference string
	Note      string
}

// Ledger owns all stock mutations.
type Ledger struct {
	db        *db.DB
	rooms     RoomDirectory
	recorder  Recorder
	publisher Publisher
	tracer    trace.Tracer
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithRecorder sets the operation recorder (metrics).
func WithRecorder(r Recorder) Option {
	return func(l *Ledger) { l.recorder = r }
}

// WithPublisher sets where committed transactions are published.
func WithPublisher(p Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(l *Ledger) { l.tracer = tp.Tracer(tracerName) }
}

// New creates a ledger over database. rooms is consulted read-only to fill
// in block ids for room rows and transaction records.
func New(database *db.DB, rooms RoomDirectory, opts ...Option) *Ledger {
	l := &Ledger{
		db:     database,
		rooms:  rooms,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Receive adds qty to the central store.
func (l *Ledger) Receive(ctx context.Context, by, itemID, dormID int64, qty int, memo Memo) (*model.Transaction, error) {
	op := operation{typ: model.TxReceive, by: by, itemID: itemID, dormID: dormID, qty: qty}
	return l.execute(ctx, op, func(ctx context.Context, tx *db.Tx, _ rooms) (*model.Transaction, error) {
		have, err := lockItem(ctx, tx, itemID, dormID)
		if err != nil {
			return nil, err
		}
		if err := adjustCentral(ctx, tx, itemID, have, model.TxReceive, qty); err != nil {
			return nil, err
		}
		return record(ctx, tx, &model.Transaction{
			ItemID:      itemID,
			DormID:      dormID,
			Type:        model.TxReceive,
			Quantity:    qty,
			Reference:   memo.Reference,
			Note:        memo.Note,
			PerformedBy: by,
		})
	})
}

// AssignToRoom moves qty from the central store to a room.
func (l *Ledger) AssignToRoom(ctx context.Context, by, itemID, dormID, roomID int64, qty int, memo Memo) (*model.Transaction, error) {
	op := operation{typ: model.TxAssign, by: by, itemID: itemID, dormID: dormID, qty: qty, rooms: []int64{roomID}}
	return l.execute(ctx, op, func(ctx context.Context, tx *db.Tx, rs rooms) (*model.Transaction, error) {
		have, err := lockItem(ctx, tx, itemID, dormID)
		if err != nil {
			return nil, err
		}
		if have < qty {
			return nil, &InsufficientError{Location: LocationCentral, ItemID: itemID, Available: have, Requested: qty}
		}

		blockID, err := adjustRoomStock(ctx, tx, itemID, dormID, rs[roomID], qty)
		if err != nil {
			return nil, err
		}
		if err := adjustCentral(ctx, tx, itemID, have, model.TxAssign, qty); err != nil {
			return nil, err
		}

		return record(ctx, tx, &model.Transaction{
			ItemID:      itemID,
			DormID:      dormID,
			Type:        model.TxAssign,
			Quantity:    qty,
			ToBlockID:   &blockID,
			ToRoomID:    &roomID,
			Reference:   memo.Reference,
			Note:        memo.Note,
			PerformedBy: by,
		})
	})
}

// TransferRoomToRoom moves qty between two rooms. The central store is not
// touched.
func (l *Ledger) TransferRoomToRoom(ctx context.Context, by, itemID, dormID, fromRoomID, toRoomID int64, qty int, memo Memo) (*model.Transaction, error) {
	op := operation{typ: model.TxTransfer, by: by, itemID: itemID, dormID: dormID, qty: qty, rooms: []int64{fromRoomID, toRoomID}}
	if fromRoomID == toRoomID {
		op.invalid = invalidf("cannot transfer to the same room")
	}
	return l.execute(ctx, op, func(ctx context.Context, tx *db.Tx, rs rooms) (*model.Transaction, error) {
		if err := requireItem(ctx, tx, itemID, dormID); err != nil {
			return nil, err
		}

		// Lock both rows in ascending room order so that transfers running in
		// opposite directions cannot deadlock.
		first, second := fromRoomID, toRoomID
		if second < first {
			first, second = second, first
		}
		for _, roomID := range []int64{first, second} {
			if _, err := lockStock(ctx, tx, itemID, roomID); err != nil {
				return nil, err
			}
		}

		fromBlockID, err := adjustRoomStock(ctx, tx, itemID, dormID, rs[fromRoomID], -qty)
		if err != nil {
			return nil, err
		}
		toBlockID, err := adjustRoomStock(ctx, tx, itemID, dormID, rs[toRoomID], qty)
		if err != nil {
			return nil, err
		}

		return record(ctx, tx, &model.Transaction{
			ItemID:      itemID,
			DormID:      dormID,
			Type:        model.TxTransfer,
			Quantity:    qty,
			FromBlockID: &fromBlockID,
			FromRoomID:  &fromRoomID,
			ToBlockID:   &toBlockID,
			ToRoomID:    &toRoomID,
			Reference:   memo.Reference,
			Note:        memo.Note,
			PerformedBy: by,
		})
	})
}

// DemolishCentral writes qty off the central store.
func (l *Ledger) DemolishCentral(ctx context.Context, by, itemID, dormID int64, qty int, reason string) (*model.Transaction, error) {
	op := operation{typ: model.TxDemolishCentral, by: by, itemID: itemID, dormID: dormID, qty: qty}
	if strings.TrimSpace(reason) == "" {
		op.invalid = invalidf("reason is required")
	}
	return l.execute(ctx, op, func(ctx context.Context, tx *db.Tx, _ rooms) (*model.Transaction, error) {
		have, err := lockItem(ctx, tx, itemID, dormID)
		if err != nil {
			return nil, err
		}
		if have < qty {
			return nil, &InsufficientError{Location: LocationCentral, ItemID: itemID, Available: have, Requested: qty}
		}
		if err := adjustCentral(ctx, tx, itemID, have, model.TxDemolishCentral, qty); err != nil {
			return nil, err
		}

		return record(ctx, tx, &model.Transaction{
			ItemID:      itemID,
			DormID:      dormID,
			Type:        model.TxDemolishCentral,
			Quantity:    qty,
			Note:        reason,
			PerformedBy: by,
		})
	})
}

// DemolishRoom writes qty off a room allocation.
func (l *Ledger) DemolishRoom(ctx context.Context, by, itemID, dormID, roomID int64, qty int, reason string) (*model.Transaction, error) {
	op := operation{typ: model.TxDemolishRoom, by: by, itemID: itemID, dormID: dormID, qty: qty, rooms: []int64{roomID}}
	if strings.TrimSpace(reason) == "" {
		op.invalid = invalidf("reason is required")
	}
	return l.execute(ctx, op, func(ctx context.Context, tx *db.Tx, rs rooms) (*model.Transaction, error) {
		if err := requireItem(ctx, tx, itemID, dormID); err != nil {
			return nil, err
		}

		blockID, err := adjustRoomStock(ctx, tx, itemID, dormID, rs[roomID], -qty)
		if err != nil {
			return nil, err
		}

		return record(ctx, tx, &model.Transaction{
			ItemID:      itemID,
			DormID:      dormID,
			Type:        model.TxDemolishRoom,
			Quantity:    qty,
			FromBlockID: &blockID,
			FromRoomID:  &roomID,
			Note:        reason,
			PerformedBy: by,
		})
	})
}

// UnassignFromRoom returns qty from a room to the central store.
func (l *Ledger) UnassignFromRoom(ctx context.Context, by, itemID, dormID, roomID int64, qty int, memo Memo) (*model.Transaction, error) {
	op := operation{typ: model.TxUnassign, by: by, itemID: itemID, dormID: dormID, qty: qty, rooms: []int64{roomID}}
	return l.execute(ctx, op, func(ctx context.Context, tx *db.Tx, rs rooms) (*model.Transaction, error) {
		have, err := lockItem(ctx, tx, itemID, dormID)
		if err != nil {
			return nil, err
		}

		blockID, err := adjustRoomStock(ctx, tx, itemID, dormID, rs[roomID], -qty)
		if err != nil {
			return nil, err
		}
		if err := adjustCentral(ctx, tx, itemID, have, model.TxUnassign, qty); err != nil {
			return nil, err
		}

		return record(ctx, tx, &model.Transaction{
			ItemID:      itemID,
			DormID:      dormID,
			Type:        model.TxUnassign,
			Quantity:    qty,
			FromBlockID: &blockID,
			FromRoomID:  &roomID,
			Reference:   memo.Reference,
			Note:        memo.Note,
			PerformedBy: by,
		})
	})
}

type operation struct {
	typ    model.TransactionType
	by     int64
	itemID int64
	dormID int64
	qty    int
	rooms  []int64

	// invalid is an operation-specific argument error found by the caller.
	invalid error
}

func (op operation) validate() error {
	if op.qty <= 0 {
		return invalidf("quantity must be positive, got %d", op.qty)
	}
	if op.qty > MaxQuantity {
		return invalidf("quantity must not exceed %d, got %d", MaxQuantity, op.qty)
	}
	if op.by <= 0 {
		return invalidf("acting user is required")
	}
	if op.itemID <= 0 || op.dormID <= 0 {
		return invalidf("item and dorm are required")
	}
	for _, id := range op.rooms {
		if id <= 0 {
			return invalidf("room is required")
		}
	}
	return op.invalid
}

func (op operation) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("ledger.type", string(op.typ)),
		attribute.Int64("ledger.item_id", op.itemID),
		attribute.Int64("ledger.dorm_id", op.dormID),
		attribute.Int("ledger.quantity", op.qty),
		attribute.Int64("ledger.performed_by", op.by),
	}
	if len(op.rooms) > 0 {
		attrs = append(attrs, attribute.Int64Slice("ledger.room_ids", op.rooms))
	}
	return attrs
}

type txFunc func(ctx context.Context, tx *db.Tx, rs rooms) (*model.Transaction, error)

// execute validates op, resolves its rooms, runs fn in one database
// transaction and reports the outcome. Nothing is written unless fn and the
// commit both succeed.
func (l *Ledger) execute(ctx context.Context, op operation, fn txFunc) (*model.Transaction, error) {
	ctx, span := l.tracer.Start(ctx, "ledger."+string(op.typ), trace.WithAttributes(op.attributes()...))
	defer span.End()

	t, err := l.run(ctx, op, fn)

	if l.recorder != nil {
		l.recorder.ObserveOperation(op.typ, Outcome(err), op.qty)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Outcome(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int64("ledger.transaction_id", t.ID))

	slog.Info("inventory transaction recorded",
		"id", t.ID, "type", t.Type, "item", t.ItemID, "dorm", t.DormID,
		"quantity", t.Quantity, "user", t.PerformedBy)

	if l.publisher != nil {
		if err := l.publisher.Publish(ctx, t); err != nil {
			slog.Warn("failed to publish inventory transaction", "id", t.ID, "error", err)
		}
	}

	return t, nil
}

func (l *Ledger) run(ctx context.Context, op operation, fn txFunc) (*model.Transaction, error) {
	if err := op.validate(); err != nil {
		return nil, err
	}

	// Block assignment of a room does not change under us, so rooms are
	// resolved before the transaction takes its locks.
	rs := make(rooms, len(op.rooms))
	for _, id := range op.rooms {
		rs[id] = l.resolveRoom(ctx, op.dormID, id)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := fn(ctx, tx, rs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing %s: %w", op.typ, err)
	}
	return t, nil
}

// roomRef is a room as seen by the directory. err is only reported when the
// room's block is actually needed.
type roomRef struct {
	id  int64
	loc *model.RoomLocation
	err error
}

type rooms map[int64]roomRef

func (l *Ledger) resolveRoom(ctx context.Context, dormID, roomID int64) roomRef {
	ref := roomRef{id: roomID}
	loc, err := l.rooms.LookupRoom(ctx, roomID)
	switch {
	case err != nil:
		ref.err = fmt.Errorf("resolving room %d: %w", roomID, err)
	case loc == nil || loc.DormID != dormID:
		ref.err = notFoundf("room %d not found in dorm %d", roomID, dormID)
	default:
		ref.loc = loc
	}
	return ref
}

func record(ctx context.Context, tx *db.Tx, t *model.Transaction) (*model.Transaction, error) {
	id, err := store.InsertTransaction(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	created, err := store.GetTransaction(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("transaction %d missing after insert", id)
	}
	return created, nil
}

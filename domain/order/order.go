/*
Package order holds the Order aggregate and its lines (MaterialOnOrder).

An Order owns its lines exclusively: lines are added, resized and removed only
through Order methods, and deleting an order deletes its lines. Stock
movements that accompany line changes are orchestrated by the application
layer inside the same transaction; the aggregate only reports the delta.
*/
package order

import (
	"fmt"
	"time"

	"workshop/domain/shared"

	"github.com/google/uuid"
)

// Order aggregate root.
type Order struct {
	id         string
	clientID   string
	workerID   string // empty when unassigned
	date       time.Time
	prodPeriod int // days, 0 when not set
	status     Status
	lines      []Line
	version    int

	shared.EventRecorder

	// Dirty tracking, consumed by repositories.
	isNew        bool
	headerDirty  bool
	addedLines   []Line
	removedLines []Line
	resizedLines []Line
}

// Line is an order line: a material reserved for the order in a given amount.
type Line struct {
	id         string
	orderID    string
	materialID string
	amount     int
}

// CreateParams are the header fields of a new order.
type CreateParams struct {
	ClientID   string
	WorkerID   string
	ProdPeriod int
	Date       time.Time
}

// UpdateParams is a partial update; nil fields are left untouched.
// An empty WorkerID unassigns the worker, a zero ProdPeriod clears it.
type UpdateParams struct {
	ClientID   *string
	WorkerID   *string
	ProdPeriod *int
	Status     *Status
}

// NewOrder creates an order in status Processing.
func NewOrder(p CreateParams) (*Order, error) {
	if p.ClientID == "" {
		return nil, shared.NewValidationError("order", "client_id", "is required")
	}
	if p.ProdPeriod < 0 {
		return nil, shared.NewValidationError("order", "prod_period", "must be positive")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order ID: %w", err)
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}

	o := &Order{
		id:         id.String(),
		clientID:   p.ClientID,
		workerID:   p.WorkerID,
		date:       date,
		prodPeriod: p.ProdPeriod,
		status:     StatusProcessing,
		isNew:      true,
	}
	o.Record(NewOrderCreatedEvent(o))
	return o, nil
}

// ============================================================================
// Lines
// ============================================================================

// AddLine appends a line for materialID. A material may appear at most once per order.
func (o *Order) AddLine(materialID string, amount int) (Line, error) {
	if materialID == "" {
		return Line{}, shared.NewValidationError("order", "material_id", "is required")
	}
	if amount <= 0 {
		return Line{}, shared.NewInvalidAmountError(materialID, amount)
	}
	if _, exists := o.LineByMaterial(materialID); exists {
		return Line{}, NewDuplicateLineError(o.id, materialID)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Line{}, fmt.Errorf("failed to generate line ID: %w", err)
	}

	line := Line{
		id:         id.String(),
		orderID:    o.id,
		materialID: materialID,
		amount:     amount,
	}
	o.lines = append(o.lines, line)
	if !o.isNew {
		o.addedLines = append(o.addedLines, line)
	}

	o.Record(NewMaterialLinkedToOrderEvent(line))
	return line, nil
}

// ResizeLine sets a new amount and returns newAmount - oldAmount.
// A zero delta changes nothing and records nothing.
func (o *Order) ResizeLine(lineID string, newAmount int) (int, error) {
	idx := o.indexOfLine(lineID)
	if idx < 0 {
		return 0, NewLineNotFoundError(lineID)
	}
	line := o.lines[idx]
	if newAmount <= 0 {
		return 0, shared.NewInvalidAmountError(line.materialID, newAmount)
	}

	delta := newAmount - line.amount
	if delta == 0 {
		return 0, nil
	}

	line.amount = newAmount
	o.lines[idx] = line
	if !o.isNew && !o.wasAdded(lineID) {
		o.trackResize(line)
	}

	o.Record(NewOrderUpdatedEvent(o))
	return delta, nil
}

// RemoveLine drops a line and returns it so the caller can restock its amount.
func (o *Order) RemoveLine(lineID string) (Line, error) {
	idx := o.indexOfLine(lineID)
	if idx < 0 {
		return Line{}, NewLineNotFoundError(lineID)
	}
	line := o.lines[idx]
	o.lines = append(o.lines[:idx:idx], o.lines[idx+1:]...)

	if !o.isNew {
		if o.wasAdded(lineID) {
			o.addedLines = removeLine(o.addedLines, lineID)
		} else {
			o.resizedLines = removeLine(o.resizedLines, lineID)
			o.removedLines = append(o.removedLines, line)
		}
	}

	o.Record(NewMaterialUnlinkedFromOrderEvent(line))
	return line, nil
}

func (o *Order) indexOfLine(lineID string) int {
	for i, l := range o.lines {
		if l.id == lineID {
			return i
		}
	}
	return -1
}

func (o *Order) wasAdded(lineID string) bool {
	for _, l := range o.addedLines {
		if l.id == lineID {
			return true
		}
	}
	return false
}

func (o *Order) trackResize(line Line) {
	for i, l := range o.resizedLines {
		if l.id == line.id {
			o.resizedLines[i] = line
			return
		}
	}
	o.resizedLines = append(o.resizedLines, line)
}

func removeLine(lines []Line, lineID string) []Line {
	for i, l := range lines {
		if l.id == lineID {
			return append(lines[:i:i], lines[i+1:]...)
		}
	}
	return lines
}

// Line looks a line up by ID.
func (o *Order) Line(lineID string) (Line, bool) {
	if idx := o.indexOfLine(lineID); idx >= 0 {
		return o.lines[idx], true
	}
	return Line{}, false
}

// LineByMaterial looks a line up by material.
func (o *Order) LineByMaterial(materialID string) (Line, bool) {
	for _, l := range o.lines {
		if l.materialID == materialID {
			return l, true
		}
	}
	return Line{}, false
}

// ============================================================================
// Header
// ============================================================================

// Update applies a partial update and reports whether the status value changed.
// Reference checks on client and worker are the caller's job.
func (o *Order) Update(p UpdateParams) (bool, error) {
	if p.ClientID != nil && *p.ClientID == "" {
		return false, shared.NewValidationError("order", "client_id", "cannot be empty")
	}
	if p.ProdPeriod != nil && *p.ProdPeriod < 0 {
		return false, shared.NewValidationError("order", "prod_period", "must be positive")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return false, shared.NewValidationError("order", "status", "unknown status "+string(*p.Status))
	}

	if p.ClientID != nil {
		o.clientID = *p.ClientID
	}
	if p.WorkerID != nil {
		o.workerID = *p.WorkerID
	}
	if p.ProdPeriod != nil {
		o.prodPeriod = *p.ProdPeriod
	}

	statusChanged := false
	previous := o.status
	if p.Status != nil && *p.Status != o.status {
		o.status = *p.Status
		statusChanged = true
	}
	o.headerDirty = true

	o.Record(NewOrderUpdatedEvent(o))
	if statusChanged {
		o.Record(NewOrderStatusChangedEvent(o.id, previous, o.status))
	}
	return statusChanged, nil
}

// MarkRemoved records the deletion of the order and its lines.
func (o *Order) MarkRemoved() {
	o.Record(NewOrderDeletedEvent(o))
}

// IncrementVersionForSave is called by repositories after a successful header update.
func (o *Order) IncrementVersionForSave() {
	o.version++
}

// ============================================================================
// Getters
// ============================================================================

func (o *Order) ID() string       { return o.id }
func (o *Order) ClientID() string { return o.clientID }
func (o *Order) WorkerID() string { return o.workerID }
func (o *Order) HasWorker() bool  { return o.workerID != "" }
func (o *Order) Date() time.Time  { return o.date }
func (o *Order) ProdPeriod() int  { return o.prodPeriod }
func (o *Order) Status() Status   { return o.status }
func (o *Order) Version() int     { return o.version }

// Lines returns a copy of the lines.
func (o *Order) Lines() []Line {
	lines := make([]Line, len(o.lines))
	copy(lines, o.lines)
	return lines
}

// ============================================================================
// Dirty tracking, for repository implementations only
// ============================================================================

func (o *Order) IsNew() bool          { return o.isNew }
func (o *Order) HeaderDirty() bool    { return o.headerDirty }
func (o *Order) AddedLines() []Line   { return append([]Line(nil), o.addedLines...) }
func (o *Order) RemovedLines() []Line { return append([]Line(nil), o.removedLines...) }
func (o *Order) ResizedLines() []Line { return append([]Line(nil), o.resizedLines...) }

// ClearDirtyTracking is called after a successful save.
func (o *Order) ClearDirtyTracking() {
	o.isNew = false
	o.headerDirty = false
	o.addedLines = nil
	o.removedLines = nil
	o.resizedLines = nil
}

// ============================================================================
// Reconstruction
// ============================================================================

// ReconstructionDTO is used by repositories only.
type ReconstructionDTO struct {
	ID         string
	ClientID   string
	WorkerID   string
	Date       time.Time
	ProdPeriod int
	Status     Status
	Version    int
	Lines      []Line
}

func RebuildFromDTO(dto ReconstructionDTO) *Order {
	return &Order{
		id:         dto.ID,
		clientID:   dto.ClientID,
		workerID:   dto.WorkerID,
		date:       dto.Date,
		prodPeriod: dto.ProdPeriod,
		status:     dto.Status,
		version:    dto.Version,
		lines:      dto.Lines,
	}
}

type LineReconstructionDTO struct {
	ID         string
	OrderID    string
	MaterialID string
	Amount     int
}

func RebuildLineFromDTO(dto LineReconstructionDTO) Line {
	return Line{
		id:         dto.ID,
		orderID:    dto.OrderID,
		materialID: dto.MaterialID,
		amount:     dto.Amount,
	}
}

func (l Line) ID() string         { return l.id }
func (l Line) OrderID() string    { return l.orderID }
func (l Line) MaterialID() string { return l.materialID }
func (l Line) Amount() int        { return l.amount }

var _ shared.AggregateRoot = (*Order)(nil)

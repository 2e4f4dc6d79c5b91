package worker

import "workshop/domain/shared"

const (
	EventWorkerCreated = "worker_created"
	EventWorkerUpdated = "worker_updated"
	EventWorkerDeleted = "worker_deleted"
)

type WorkerCreatedEvent struct{ shared.BaseEvent }

func NewWorkerCreatedEvent(w *Worker) *WorkerCreatedEvent {
	return &WorkerCreatedEvent{shared.NewBaseEvent(EventWorkerCreated, w.id, payload(w))}
}

type WorkerUpdatedEvent struct{ shared.BaseEvent }

func NewWorkerUpdatedEvent(w *Worker) *WorkerUpdatedEvent {
	return &WorkerUpdatedEvent{shared.NewBaseEvent(EventWorkerUpdated, w.id, payload(w))}
}

type WorkerDeletedEvent struct{ shared.BaseEvent }

func NewWorkerDeletedEvent(id string) *WorkerDeletedEvent {
	return &WorkerDeletedEvent{shared.NewBaseEvent(EventWorkerDeleted, id, map[string]any{"worker_id": id})}
}

// Passport data and the password digest stay out of event payloads.
func payload(w *Worker) map[string]any {
	return map[string]any{
		"worker_id": w.id,
		"name":      w.name.Full(),
		"phone":     w.phone.Value(),
		"email":     w.email,
		"username":  w.username,
		"position":  w.position,
	}
}

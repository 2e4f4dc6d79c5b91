package gormstore

import (
	"context"
	"errors"
	"strings"

	"workshop/domain/client"
	"workshop/domain/provider"
	"workshop/domain/shared"
	"workshop/domain/worker"
	"workshop/infrastructure/persistence/gormstore/po"

	"gorm.io/gorm"
)

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Duplicate entry") ||
		strings.Contains(errStr, "1062") ||
		strings.Contains(errStr, "23505")
}

type versioned interface {
	IncrementVersionForSave()
}

// saveVersioned inserts row when id is unknown, otherwise updates it guarded
// by version and bumps the aggregate's version.
func saveVersioned(db *gorm.DB, agg versioned, model any, id string, version int, row any, columns map[string]any, entity string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return db.Create(row).Error
	}

	columns["version"] = gorm.Expr("version + 1")
	result := db.Model(model).Where("id = ? AND version = ?", id, version).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrentModificationError(entity, id)
	}
	agg.IncrementVersionForSave()
	return nil
}

// ============================================================================
// Clients
// ============================================================================

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Save(ctx context.Context, c *client.Client) error {
	p := po.FromClientDomain(c)
	err := saveVersioned(getDB(ctx, r.db), c, &po.ClientPO{}, p.ID, p.Version, p, map[string]any{
		"first":           p.First,
		"last":            p.Last,
		"middle":          p.Middle,
		"phone":           p.Phone,
		"mail":            p.Mail,
		"username":        p.Username,
		"hashed_password": p.HashedPassword,
	}, "client")
	if isDuplicateKeyError(err) {
		return shared.NewConflictError("client", "username or phone already registered")
	}
	return err
}

func (r *ClientRepository) findOne(ctx context.Context, notFound func() error, query string, args ...any) (*client.Client, error) {
	var p po.ClientPO
	if err := getDB(ctx, r.db).Where(query, args...).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, err
	}
	return p.ToDomain(), nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*client.Client, error) {
	return r.findOne(ctx, func() error { return client.NewClientNotFoundError(id) }, "id = ?", id)
}

func (r *ClientRepository) FindByPhone(ctx context.Context, phone string) (*client.Client, error) {
	return r.findOne(ctx, func() error { return shared.NewNotFoundError("client", phone) }, "phone = ?", phone)
}

func (r *ClientRepository) FindByUsername(ctx context.Context, username string) (*client.Client, error) {
	return r.findOne(ctx, func() error { return shared.NewNotFoundError("client", username) }, "username = ?", username)
}

func (r *ClientRepository) FindAll(ctx context.Context) ([]*client.Client, error) {
	var pos []po.ClientPO
	if err := getDB(ctx, r.db).Order("last ASC").Order("first ASC").Find(&pos).Error; err != nil {
		return nil, err
	}
	out := make([]*client.Client, len(pos))
	for i := range pos {
		out[i] = pos[i].ToDomain()
	}
	return out, nil
}

func (r *ClientRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&po.ClientPO{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *ClientRepository) Remove(ctx context.Context, id string) error {
	result := getDB(ctx, r.db).Where("id = ?", id).Delete(&po.ClientPO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return client.NewClientNotFoundError(id)
	}
	return nil
}

// ============================================================================
// Workers
// ============================================================================

type WorkerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

func (r *WorkerRepository) Save(ctx context.Context, w *worker.Worker) error {
	p := po.FromWorkerDomain(w)
	err := saveVersioned(getDB(ctx, r.db), w, &po.WorkerPO{}, p.ID, p.Version, p, map[string]any{
		"first":           p.First,
		"last":            p.Last,
		"middle":          p.Middle,
		"phone":           p.Phone,
		"mail":            p.Mail,
		"username":        p.Username,
		"hashed_password": p.HashedPassword,
		"position":        p.Position,
		"pass_series":     p.PassSeries,
		"pass_number":     p.PassNumber,
		"born_date":       p.BornDate,
	}, "worker")
	if isDuplicateKeyError(err) {
		return shared.NewConflictError("worker", "username or phone already registered")
	}
	return err
}

func (r *WorkerRepository) findOne(ctx context.Context, notFound func() error, query string, args ...any) (*worker.Worker, error) {
	var p po.WorkerPO
	if err := getDB(ctx, r.db).Where(query, args...).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, err
	}
	return p.ToDomain(), nil
}

func (r *WorkerRepository) FindByID(ctx context.Context, id string) (*worker.Worker, error) {
	return r.findOne(ctx, func() error { return worker.NewWorkerNotFoundError(id) }, "id = ?", id)
}

func (r *WorkerRepository) FindByPhone(ctx context.Context, phone string) (*worker.Worker, error) {
	return r.findOne(ctx, func() error { return shared.NewNotFoundError("worker", phone) }, "phone = ?", phone)
}

func (r *WorkerRepository) FindByUsername(ctx context.Context, username string) (*worker.Worker, error) {
	return r.findOne(ctx, func() error { return shared.NewNotFoundError("worker", username) }, "username = ?", username)
}

func (r *WorkerRepository) FindAll(ctx context.Context) ([]*worker.Worker, error) {
	var pos []po.WorkerPO
	if err := getDB(ctx, r.db).Order("last ASC").Order("first ASC").Find(&pos).Error; err != nil {
		return nil, err
	}
	out := make([]*worker.Worker, len(pos))
	for i := range pos {
		out[i] = pos[i].ToDomain()
	}
	return out, nil
}

func (r *WorkerRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&po.WorkerPO{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *WorkerRepository) Remove(ctx context.Context, id string) error {
	result := getDB(ctx, r.db).Where("id = ?", id).Delete(&po.WorkerPO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return worker.NewWorkerNotFoundError(id)
	}
	return nil
}

// ============================================================================
// Providers and material links
// ============================================================================

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Save(ctx context.Context, p *provider.Provider) error {
	row := po.FromProviderDomain(p)
	err := saveVersioned(getDB(ctx, r.db), p, &po.ProviderPO{}, row.ID, row.Version, row, map[string]any{
		"name":    row.Name,
		"inn":     row.INN,
		"phone":   row.Phone,
		"mail":    row.Mail,
		"address": row.Address,
	}, "provider")
	if isDuplicateKeyError(err) {
		return provider.NewINNTakenError(row.INN)
	}
	return err
}

func (r *ProviderRepository) FindByID(ctx context.Context, id string) (*provider.Provider, error) {
	var row po.ProviderPO
	if err := getDB(ctx, r.db).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, provider.NewProviderNotFoundError(id)
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

func (r *ProviderRepository) FindByINN(ctx context.Context, inn string) (*provider.Provider, error) {
	var row po.ProviderPO
	if err := getDB(ctx, r.db).First(&row, "inn = ?", inn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("provider", inn)
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

func (r *ProviderRepository) FindAll(ctx context.Context) ([]*provider.Provider, error) {
	var rows []po.ProviderPO
	if err := getDB(ctx, r.db).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*provider.Provider, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *ProviderRepository) Remove(ctx context.Context, id string) error {
	db := getDB(ctx, r.db)
	if err := db.Where("provider_id = ?", id).Delete(&po.MatProviderPO{}).Error; err != nil {
		return err
	}
	result := db.Where("id = ?", id).Delete(&po.ProviderPO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return provider.NewProviderNotFoundError(id)
	}
	return nil
}

func (r *ProviderRepository) FindLink(ctx context.Context, providerID, materialID string) (*provider.MaterialLink, error) {
	var row po.MatProviderPO
	err := getDB(ctx, r.db).
		Where("provider_id = ? AND material_id = ?", providerID, materialID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	link := row.ToDomain()
	return &link, nil
}

func (r *ProviderRepository) SaveLink(ctx context.Context, link provider.MaterialLink) error {
	err := getDB(ctx, r.db).Create(po.FromLinkDomain(link)).Error
	if isDuplicateKeyError(err) {
		return shared.NewConflictError("provider", "material "+link.MaterialID+" already linked")
	}
	return err
}

func (r *ProviderRepository) RemoveLink(ctx context.Context, providerID, materialID string) error {
	result := getDB(ctx, r.db).
		Where("provider_id = ? AND material_id = ?", providerID, materialID).
		Delete(&po.MatProviderPO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return provider.NewLinkNotFoundError(providerID, materialID)
	}
	return nil
}

func (r *ProviderRepository) ListByProvider(ctx context.Context, providerID string) ([]provider.MaterialLink, error) {
	return r.listLinks(ctx, "provider_id = ?", providerID)
}

func (r *ProviderRepository) ListByMaterial(ctx context.Context, materialID string) ([]provider.MaterialLink, error) {
	return r.listLinks(ctx, "material_id = ?", materialID)
}

func (r *ProviderRepository) listLinks(ctx context.Context, query string, arg string) ([]provider.MaterialLink, error) {
	var rows []po.MatProviderPO
	if err := getDB(ctx, r.db).Where(query, arg).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]provider.MaterialLink, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var (
	_ client.Repository       = (*ClientRepository)(nil)
	_ worker.Repository       = (*WorkerRepository)(nil)
	_ provider.Repository     = (*ProviderRepository)(nil)
	_ provider.LinkRepository = (*ProviderRepository)(nil)
)
